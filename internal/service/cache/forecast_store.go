package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
)

// ForecastStore keeps forecasts as JSON in a BytesCache.
type ForecastStore struct {
	c          BytesCache
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewForecastStore stores forecasts for ttl; pending markers expire after pendingTTL
// so a lost reply does not block new requests forever.
func NewForecastStore(c BytesCache, ttl, pendingTTL time.Duration) *ForecastStore {
	if pendingTTL <= 0 {
		pendingTTL = ttl
	}
	return &ForecastStore{c: c, ttl: ttl, pendingTTL: pendingTTL}
}

// Key is the cache key for one entity and period.
func Key(entity string, period domrepo.Period) string {
	return "forecast:" + entity + ":" + string(period)
}

func pendingKey(entity string, period domrepo.Period) string {
	return Key(entity, period) + ":pending"
}

func (s *ForecastStore) Get(ctx context.Context, entity string, period domrepo.Period) (models.Forecast, error) {
	var f models.Forecast
	b, ok, err := s.c.GetBytes(ctx, Key(entity, period))
	if err != nil {
		return f, fmt.Errorf("get forecast: %w", err)
	}
	if !ok {
		return f, domrepo.ErrNotFound
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("decode forecast: %w", err)
	}
	return f, nil
}

func (s *ForecastStore) Put(ctx context.Context, f models.Forecast) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := s.c.SetBytes(ctx, Key(f.Entity, domrepo.Period(f.Period)), b, s.ttl); err != nil {
		return fmt.Errorf("put forecast: %w", err)
	}
	return nil
}

func (s *ForecastStore) MarkPending(ctx context.Context, entity string, period domrepo.Period) (bool, error) {
	ok, err := s.c.SetNX(ctx, pendingKey(entity, period), []byte("1"), s.pendingTTL)
	if err != nil {
		return false, fmt.Errorf("mark pending: %w", err)
	}
	return ok, nil
}

func (s *ForecastStore) ClearPending(ctx context.Context, entity string, period domrepo.Period) error {
	if err := s.c.Delete(ctx, pendingKey(entity, period)); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	return nil
}

var _ domrepo.ForecastStore = (*ForecastStore)(nil)
