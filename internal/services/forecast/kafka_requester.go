package forecast

import (
	"context"
	"fmt"

	"ChartCast/internal/domain/models"
	domsvc "ChartCast/internal/domain/service"
	"ChartCast/pkg/config"

	"github.com/segmentio/kafka-go"
)

// Publisher is the subset of *pkg/kafka.Producer used to queue requests.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers ...kafka.Header) error
}

// KafkaRequester queues forecast requests for the prediction service.
type KafkaRequester struct {
	pub   Publisher
	topic string
}

func NewKafkaRequester(pub Publisher, cfg *config.Config) *KafkaRequester {
	return &KafkaRequester{pub: pub, topic: cfg.Kafka.RequestTopic}
}

// Request publishes req keyed by entity:period so replies for one key stay ordered.
func (r *KafkaRequester) Request(ctx context.Context, req models.ForecastRequest) error {
	key := []byte(req.Entity + ":" + req.Period)
	if err := r.pub.Publish(ctx, r.topic, key, req); err != nil {
		return fmt.Errorf("request forecast %s: %w", key, err)
	}
	return nil
}

var _ domsvc.ForecastRequester = (*KafkaRequester)(nil)
