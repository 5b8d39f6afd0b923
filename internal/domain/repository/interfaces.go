package repository

import (
	"context"
	"errors"
	"time"

	"ChartCast/internal/domain/models"
)

var ErrNotFound = errors.New("not found")

// HistoryStore provides read-only access to per-period totals.
type HistoryStore interface {
	// PeriodTotals returns the latest n buckets for entity, ascending by bucket.
	PeriodTotals(ctx context.Context, entity string, period Period, n int) ([]models.PeriodTotal, error)
	Health(ctx context.Context) error
}

// ForecastStore keeps the latest forecast per entity and period.
type ForecastStore interface {
	Get(ctx context.Context, entity string, period Period) (models.Forecast, error)
	Put(ctx context.Context, f models.Forecast) error
	// MarkPending reports whether the caller acquired the pending marker for the key.
	MarkPending(ctx context.Context, entity string, period Period) (bool, error)
	ClearPending(ctx context.Context, entity string, period Period) error
}

type Metrics interface {
	RecordRender(format string, points int)
	RecordForecast(outcome string)
	RecordError(kind string)
	RecordLatency(op string, d time.Duration)
}
