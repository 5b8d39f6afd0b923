package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	domsvc "ChartCast/internal/domain/service"
	"ChartCast/internal/services/features"
	"ChartCast/pkg/chart"
	"ChartCast/pkg/config"
	applogger "ChartCast/pkg/logger"
)

// ErrInvalidParams is returned for requests the use case cannot serve.
var ErrInvalidParams = errors.New("invalid chart params")

// Forecast outcomes, reported with each result and counted in metrics.
const (
	OutcomeCached    = "cached"
	OutcomeFetched   = "fetched"
	OutcomeRequested = "requested"
	OutcomePending   = "pending"
	OutcomeFailed    = "failed"
	OutcomeDisabled  = "disabled"
	OutcomeSkipped   = "skipped"
)

// ChartUseCase loads history, resolves a forecast and lays out the chart.
type ChartUseCase struct {
	history    domrepo.HistoryStore
	store      domrepo.ForecastStore
	forecaster domsvc.Forecaster
	requester  domsvc.ForecastRequester
	metrics    domrepo.Metrics
	log        *applogger.Logger

	mode     string
	timeout  time.Duration
	horizon  int
	defaults chart.Options
	now      func() time.Time
}

func NewChartUseCase(
	cfg *config.Config,
	history domrepo.HistoryStore,
	store domrepo.ForecastStore,
	forecaster domsvc.Forecaster,
	requester domsvc.ForecastRequester,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *ChartUseCase {
	return &ChartUseCase{
		history:    history,
		store:      store,
		forecaster: forecaster,
		requester:  requester,
		metrics:    metrics,
		log:        log,
		mode:       cfg.Forecast.Mode,
		timeout:    cfg.Forecast.Timeout,
		horizon:    cfg.Forecast.Horizon,
		defaults:   DefaultOptions(cfg),
		now:        time.Now,
	}
}

// DefaultOptions builds render options from the chart config section.
func DefaultOptions(cfg *config.Config) chart.Options {
	return chart.Options{
		Width:             cfg.Chart.Width,
		Height:            cfg.Chart.Height,
		Padding:           chart.Padding{X: cfg.Chart.PaddingX, Y: cfg.Chart.PaddingY},
		PaddingFactor:     cfg.Chart.PaddingFactor,
		LineColor:         cfg.Chart.LineColor,
		ForecastLineColor: cfg.Chart.ForecastLineColor,
	}
}

type ChartParams struct {
	Entity  string
	Period  domrepo.Period
	N       int
	Horizon int // below zero takes the configured default
	Format  string
	Options chart.Options
}

type ChartResult struct {
	Entity         string
	Period         domrepo.Period
	ForecastStatus string
	Model          string
	Geometry       chart.Geometry
}

// Payload converts the result into the JSON body served to clients.
func (r *ChartResult) Payload() models.ChartPayload {
	return models.ChartPayload{
		Entity:   r.Entity,
		Period:   string(r.Period),
		Forecast: r.ForecastStatus,
		Model:    r.Model,
		Geometry: r.Geometry,
	}
}

// Render draws the latest N periods of entity plus its forecast. Forecast
// problems degrade to a chart without forecast; only history errors fail.
func (uc *ChartUseCase) Render(ctx context.Context, p ChartParams) (*ChartResult, error) {
	if p.Entity == "" {
		return nil, fmt.Errorf("%w: entity required", ErrInvalidParams)
	}
	if !domrepo.IsValidPeriod(p.Period) {
		p.Period = domrepo.DefaultPeriod()
	}
	if p.N <= 0 {
		p.N = 12
	}
	if p.Horizon < 0 {
		p.Horizon = uc.horizon
	}

	start := uc.now()
	totals, err := uc.history.PeriodTotals(ctx, p.Entity, p.Period, p.N)
	uc.metrics.RecordLatency("history", time.Since(start))
	if err != nil {
		uc.metrics.RecordError("history")
		return nil, fmt.Errorf("load history: %w", err)
	}

	hist := features.HistorySeries(totals, p.Period)
	fc, outcome, model := uc.resolveForecast(ctx, p, totals)
	uc.metrics.RecordForecast(outcome)

	g := chart.Render(hist, fc, uc.mergeOptions(p.Options))
	uc.metrics.RecordRender(p.Format, len(hist)+len(fc))

	uc.log.Debug("chart rendered",
		applogger.String("entity", p.Entity),
		applogger.String("period", string(p.Period)),
		applogger.Int("historical", len(hist)),
		applogger.Int("forecast", len(fc)),
		applogger.String("forecast_status", outcome),
	)
	return &ChartResult{
		Entity:         p.Entity,
		Period:         p.Period,
		ForecastStatus: outcome,
		Model:          model,
		Geometry:       g,
	}, nil
}

// RenderSeries lays out caller-supplied series with the configured defaults.
func (uc *ChartUseCase) RenderSeries(historical, forecast chart.Series, opts chart.Options, format string) chart.Geometry {
	g := chart.Render(historical, forecast, uc.mergeOptions(opts))
	uc.metrics.RecordRender(format, len(historical)+len(forecast))
	return g
}

func (uc *ChartUseCase) resolveForecast(ctx context.Context, p ChartParams, totals []models.PeriodTotal) (chart.Series, string, string) {
	if uc.mode == config.ForecastOff || p.Horizon <= 0 {
		return nil, OutcomeDisabled, ""
	}
	if len(totals) == 0 {
		// nothing to anchor a continuation to
		return nil, OutcomeSkipped, ""
	}
	last := totals[len(totals)-1].Bucket
	series := func(values []float64) chart.Series {
		if len(values) > p.Horizon {
			values = values[:p.Horizon]
		}
		return features.ForecastSeries(last, p.Period, values)
	}

	f, err := uc.store.Get(ctx, p.Entity, p.Period)
	switch {
	case err == nil:
		return series(f.Values), OutcomeCached, f.Model
	case !errors.Is(err, domrepo.ErrNotFound):
		uc.log.Warn("forecast store read failed", applogger.String("entity", p.Entity), applogger.Error(err))
	}

	switch uc.mode {
	case config.ForecastSync:
		return uc.fetch(ctx, p, totals, series)
	case config.ForecastAsync:
		return nil, uc.request(ctx, p, totals), ""
	default:
		return nil, OutcomeDisabled, ""
	}
}

func (uc *ChartUseCase) fetch(ctx context.Context, p ChartParams, totals []models.PeriodTotal, series func([]float64) chart.Series) (chart.Series, string, string) {
	if uc.forecaster == nil {
		return nil, OutcomeDisabled, ""
	}
	fctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := uc.now()
	f, err := uc.forecaster.Forecast(fctx, p.Entity, p.Period, features.Totals(totals), p.Horizon)
	uc.metrics.RecordLatency("forecast", time.Since(start))
	if err != nil {
		uc.metrics.RecordError("forecast")
		uc.log.Warn("forecast failed, rendering history only",
			applogger.String("entity", p.Entity),
			applogger.String("period", string(p.Period)),
			applogger.Error(err),
		)
		return nil, OutcomeFailed, ""
	}
	if err := uc.store.Put(ctx, f); err != nil {
		uc.log.Warn("forecast store write failed", applogger.String("entity", p.Entity), applogger.Error(err))
	}
	return series(f.Values), OutcomeFetched, f.Model
}

func (uc *ChartUseCase) request(ctx context.Context, p ChartParams, totals []models.PeriodTotal) string {
	if uc.requester == nil {
		return OutcomeDisabled
	}
	acquired, err := uc.store.MarkPending(ctx, p.Entity, p.Period)
	if err != nil {
		uc.metrics.RecordError("forecast_pending")
		uc.log.Warn("forecast pending marker failed", applogger.String("entity", p.Entity), applogger.Error(err))
		return OutcomeFailed
	}
	if !acquired {
		return OutcomePending
	}
	err = uc.requester.Request(ctx, models.ForecastRequest{
		Entity:      p.Entity,
		Period:      string(p.Period),
		History:     features.Totals(totals),
		Horizon:     p.Horizon,
		RequestedAt: uc.now(),
	})
	if err != nil {
		uc.metrics.RecordError("forecast_request")
		uc.log.Warn("forecast request failed", applogger.String("entity", p.Entity), applogger.Error(err))
		if cerr := uc.store.ClearPending(ctx, p.Entity, p.Period); cerr != nil {
			uc.log.Warn("clear pending failed", applogger.Error(cerr))
		}
		return OutcomeFailed
	}
	return OutcomeRequested
}

// mergeOptions overlays non-zero request options on the configured defaults.
func (uc *ChartUseCase) mergeOptions(o chart.Options) chart.Options {
	out := uc.defaults
	if o.Width > 0 {
		out.Width = o.Width
	}
	if o.Height > 0 {
		out.Height = o.Height
	}
	if o.Padding.X > 0 {
		out.Padding.X = o.Padding.X
	}
	if o.Padding.Y > 0 {
		out.Padding.Y = o.Padding.Y
	}
	if o.PaddingFactor > 0 {
		out.PaddingFactor = o.PaddingFactor
	}
	if o.LineColor != "" {
		out.LineColor = o.LineColor
	}
	if o.ForecastLineColor != "" {
		out.ForecastLineColor = o.ForecastLineColor
	}
	out.YAxisLabel = o.YAxisLabel
	out.XAxisLabel = o.XAxisLabel
	return out
}
