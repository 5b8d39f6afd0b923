package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	"ChartCast/pkg/influxdb"
	applogger "ChartCast/pkg/logger"
)

// FluxQuerier runs a Flux query returning (_time, _value) rows.
type FluxQuerier interface {
	Query(ctx context.Context, flux string) ([]influxdb.Record, error)
	Health(ctx context.Context) error
}

// InfluxSource names where observations live in InfluxDB.
type InfluxSource struct {
	Bucket      string
	Measurement string
	Field       string
}

// InfluxHistoryStore implements HistoryStore over InfluxDB v2.
type InfluxHistoryStore struct {
	q   FluxQuerier
	src InfluxSource
	l   *applogger.Logger
}

func NewInfluxHistoryStore(q FluxQuerier, src InfluxSource) *InfluxHistoryStore {
	return &InfluxHistoryStore{q: q, src: src, l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *InfluxHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *InfluxHistoryStore) PeriodTotals(ctx context.Context, entity string, period domrepo.Period, n int) ([]models.PeriodTotal, error) {
	start := time.Now()
	flux, err := periodTotalsFlux(s.src, entity, period, n)
	if err != nil {
		return nil, err
	}
	recs, err := s.q.Query(ctx, flux)
	if err != nil {
		s.l.Error("influx period_totals query error",
			applogger.String("entity", entity),
			applogger.String("period", string(period)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("period totals: %w", err)
	}

	out := make([]models.PeriodTotal, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.PeriodTotal{Bucket: r.Time, Entity: entity, Total: r.Value})
	}
	s.l.Debug("influx period_totals ok",
		applogger.String("entity", entity),
		applogger.String("period", string(period)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *InfluxHistoryStore) Health(ctx context.Context) error {
	return s.q.Health(ctx)
}

// periodTotalsFlux windows by period (labelled by window start), keeps the
// latest n windows and returns them ascending.
func periodTotalsFlux(src InfluxSource, entity string, period domrepo.Period, n int) (string, error) {
	every, lookback, offset, err := fluxWindow(period, n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: -%s)
  |> filter(fn: (r) => r._measurement == %s and r._field == %s and r.entity == %s)
  |> group()
  |> aggregateWindow(every: %s, offset: %s, fn: sum, timeSrc: "_start", createEmpty: false)
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: %d)
  |> sort(columns: ["_time"])`,
		strconv.Quote(src.Bucket), lookback,
		strconv.Quote(src.Measurement), strconv.Quote(src.Field), strconv.Quote(entity),
		every, offset, n,
	), nil
}

// fluxWindow returns the window size, a range covering n+1 windows and the
// window offset. Weekly windows are shifted from the Thursday epoch to Monday.
func fluxWindow(period domrepo.Period, n int) (every, lookback, offset string, err error) {
	span := n + 1
	switch period {
	case domrepo.PeriodDay:
		return "1d", fmt.Sprintf("%dd", span), "0s", nil
	case domrepo.PeriodWeek:
		return "1w", fmt.Sprintf("%dw", span), "4d", nil
	case domrepo.PeriodMonth:
		return "1mo", fmt.Sprintf("%dmo", span), "0s", nil
	default:
		return "", "", "", fmt.Errorf("%w: %s", domrepo.ErrUnsupportedPeriod, period)
	}
}

var _ domrepo.HistoryStore = (*InfluxHistoryStore)(nil)
