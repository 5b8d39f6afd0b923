package di

import (
	"context"
	"fmt"
	"time"

	"ChartCast/internal/domain/repository"
	domsvc "ChartCast/internal/domain/service"
	"ChartCast/internal/handler/api"
	internalrepo "ChartCast/internal/repository"
	icache "ChartCast/internal/service/cache"
	svcmetrics "ChartCast/internal/service/metrics"
	"ChartCast/internal/service/ratelimit"
	"ChartCast/internal/services/forecast"
	"ChartCast/internal/usecase"
	pkgch "ChartCast/pkg/clickhouse"
	"ChartCast/pkg/config"
	xhttp "ChartCast/pkg/http"
	"ChartCast/pkg/influxdb"
	pkgkafka "ChartCast/pkg/kafka"
	applogger "ChartCast/pkg/logger"
	"ChartCast/pkg/metrics"
	"ChartCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideRegistry creates the Prometheus registry shared by all collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the domain metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

// ProvideEndpointMetrics creates chart endpoint metrics.
func ProvideEndpointMetrics(reg prometheus.Registerer) *svcmetrics.Endpoint {
	return svcmetrics.NewEndpoint(reg)
}

// ProvideHistoryStore connects to the configured history backend.
func ProvideHistoryStore(cfg *config.Config, log *applogger.Logger) (repository.HistoryStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.History.Backend {
	case config.BackendInfluxDB:
		client, err := influxdb.Connect(ctx, cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org)
		if err != nil {
			return nil, nil, fmt.Errorf("influxdb client: %w", err)
		}
		store := internalrepo.NewInfluxHistoryStore(client, internalrepo.InfluxSource{
			Bucket:      cfg.InfluxDB.Bucket,
			Measurement: cfg.InfluxDB.Measurement,
			Field:       cfg.InfluxDB.Field,
		})
		store.SetLogger(log)
		log.Info("influxdb: connected", applogger.String("bucket", cfg.InfluxDB.Bucket))
		return store, func() { _ = client.Close() }, nil

	default:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database, cfg.History.Table)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		store := internalrepo.NewCHHistoryStore(client, cfg.History.Table)
		store.SetLogger(log)
		log.Info("clickhouse: connected and schema ready", applogger.String("database", cfg.ClickHouse.Database))
		return store, func() { _ = client.Close() }, nil
	}
}

// ProvideBytesCache returns Redis when enabled, otherwise an in-process cache.
func ProvideBytesCache(cfg *config.Config, log *applogger.Logger) (icache.BytesCache, func(), error) {
	if !cfg.Redis.Enabled {
		return icache.NewTTLCache(), func() {}, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis: connected", applogger.String("addr", cfg.Redis.Addr))
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideForecastStore keeps forecasts for forecast.ttl; a pending marker
// outlives a lost reply by at most one timeout window.
func ProvideForecastStore(c icache.BytesCache, cfg *config.Config) repository.ForecastStore {
	return icache.NewForecastStore(c, cfg.Forecast.TTL, cfg.Forecast.TTL/2)
}

// ProvideForecaster returns the HTTP forecaster in sync mode, nil otherwise.
func ProvideForecaster(cfg *config.Config) domsvc.Forecaster {
	if cfg.Forecast.Mode != config.ForecastSync {
		return nil
	}
	return forecast.NewHTTPForecaster(cfg)
}

// ProvideKafkaProducer creates a Kafka producer in async mode, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config, reg prometheus.Registerer) (*pkgkafka.Producer, func(), error) {
	if cfg.Forecast.Mode != config.ForecastAsync {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideForecastRequester publishes forecast requests when a producer exists.
func ProvideForecastRequester(producer *pkgkafka.Producer, cfg *config.Config) domsvc.ForecastRequester {
	if producer == nil {
		return nil
	}
	return forecast.NewKafkaRequester(producer, cfg)
}

// ProvideKafkaConsumer creates the forecast-ready consumer in async mode, nil otherwise.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger, reg prometheus.Registerer) (*pkgkafka.Consumer, error) {
	if cfg.Forecast.Mode != config.ForecastAsync {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(log),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.LoggingHook(log))
	return consumer, nil
}

// ProvideForecastReadyHandler handles forecast.ready events.
func ProvideForecastReadyHandler(
	cfg *config.Config,
	store repository.ForecastStore,
	hub *usecase.Hub,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ForecastReadyHandler {
	return usecase.NewForecastReadyHandler(cfg.Kafka.ReadyTopic, store, hub, m, log)
}

// ProvideLimiter creates the per-client limiter, nil when disabled.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
}

// ProvideChartHandler creates the chart HTTP handler.
func ProvideChartHandler(
	cfg *config.Config,
	log *applogger.Logger,
	uc *usecase.ChartUseCase,
	hub *usecase.Hub,
	history repository.HistoryStore,
	limiter *ratelimit.Limiter,
	ep *svcmetrics.Endpoint,
) *api.ChartHandler {
	var l api.Limiter
	if limiter != nil {
		l = limiter
	}
	return api.NewChartHandler(log, uc, hub, history, l, ep, api.StreamConfig{
		PingInterval: cfg.Stream.PingInterval,
		WriteTimeout: cfg.Stream.WriteTimeout,
	})
}

// ProvideHTTPServer creates the Echo server with the chart routes.
func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, h *api.ChartHandler, reg *prometheus.Registry) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(log),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetrics(metricsPath, reg, reg),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	ready *usecase.ForecastReadyHandler,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, log, srv, consumer, limiter, ready)
}
