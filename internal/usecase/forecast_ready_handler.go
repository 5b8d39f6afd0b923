package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	pkgkafka "ChartCast/pkg/kafka"
	applogger "ChartCast/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// ForecastReadyHandler stores forecasts published by the prediction service
// and wakes the streams waiting on them.
type ForecastReadyHandler struct {
	topic    string
	store    domrepo.ForecastStore
	hub      *Hub
	metrics  domrepo.Metrics
	log      *applogger.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewForecastReadyHandler(topic string, store domrepo.ForecastStore, hub *Hub, metrics domrepo.Metrics, log *applogger.Logger) *ForecastReadyHandler {
	return &ForecastReadyHandler{
		topic:    topic,
		store:    store,
		hub:      hub,
		metrics:  metrics,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *ForecastReadyHandler) Topic() string { return h.topic }

// incoming message schema: {entity, period, values, model, generated_at}
func (h *ForecastReadyHandler) Handle(ctx context.Context, b []byte) error {
	var m models.ForecastReady
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode forecast ready: %w", err)
	}
	if err := h.validate.StructCtx(ctx, m); err != nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("validate forecast ready: %w", err)
	}
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = h.now()
	}

	period := domrepo.Period(m.Period)
	if err := h.store.Put(ctx, m.Forecast()); err != nil {
		h.metrics.RecordError("consumer_store")
		return fmt.Errorf("store forecast: %w", err)
	}
	if err := h.store.ClearPending(ctx, m.Entity, period); err != nil {
		h.log.Warn("clear pending failed", applogger.String("entity", m.Entity), applogger.Error(err))
	}
	h.metrics.RecordForecast("ready")

	n := h.hub.Notify(HubKey(m.Entity, period))
	h.log.Debug("forecast ready",
		applogger.String("entity", m.Entity),
		applogger.String("period", m.Period),
		applogger.Int("values", len(m.Values)),
		applogger.Int("subscribers", n),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*ForecastReadyHandler)(nil)
