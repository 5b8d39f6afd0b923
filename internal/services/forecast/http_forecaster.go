package forecast

import (
	"context"
	"fmt"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	domsvc "ChartCast/internal/domain/service"
	"ChartCast/pkg/config"
)

type HTTPForecaster struct {
	base *HTTPServiceBase
	now  func() time.Time
}

func NewHTTPForecaster(cfg *config.Config) *HTTPForecaster {
	return &HTTPForecaster{base: NewHTTPServiceBase(cfg), now: time.Now}
}

type forecastReq struct {
	Entity  string    `json:"entity"`
	Period  string    `json:"period"`
	History []float64 `json:"history"`
	Horizon int       `json:"horizon"`
}

type forecastResp struct {
	Values []float64 `json:"values"`
	Model  string    `json:"model"`
}

// Forecast asks the service for horizon values continuing history. Extra
// values beyond horizon are dropped.
func (f *HTTPForecaster) Forecast(ctx context.Context, entity string, period domrepo.Period, history []float64, horizon int) (models.Forecast, error) {
	var result models.Forecast
	var fr forecastResp
	req := forecastReq{Entity: entity, Period: string(period), History: history, Horizon: horizon}
	if err := f.base.PostJSONWithRetry(ctx, "/forecast", req, &fr); err != nil {
		return result, fmt.Errorf("post forecast: %w", err)
	}
	if horizon >= 0 && len(fr.Values) > horizon {
		fr.Values = fr.Values[:horizon]
	}
	result.Entity = entity
	result.Period = string(period)
	result.Values = fr.Values
	result.Model = fr.Model
	result.GeneratedAt = f.now()
	return result, nil
}

var _ domsvc.Forecaster = (*HTTPForecaster)(nil)
