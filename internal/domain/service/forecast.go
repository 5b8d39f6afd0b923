package service

import (
	"context"

	"ChartCast/internal/domain/models"
	"ChartCast/internal/domain/repository"
)

// Forecaster asks the prediction service for a continuation of history.
type Forecaster interface {
	Forecast(ctx context.Context, entity string, period repository.Period, history []float64, horizon int) (models.Forecast, error)
}

// ForecastRequester queues a forecast to be computed out of band.
type ForecastRequester interface {
	Request(ctx context.Context, req models.ForecastRequest) error
}
