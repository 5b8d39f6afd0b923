//go:build wireinject
// +build wireinject

package di

import (
	"ChartCast/internal/usecase"
	"ChartCast/pkg/config"
	applogger "ChartCast/pkg/logger"
	"ChartCast/pkg/server"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, log *applogger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Metrics
		ProvideRegistry,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		ProvideMetrics,
		ProvideEndpointMetrics,

		// Infrastructure clients
		ProvideHistoryStore,
		ProvideBytesCache,
		ProvideForecastStore,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Forecast collaborators
		ProvideForecaster,
		ProvideForecastRequester,

		// Use cases
		usecase.NewHub,
		usecase.NewChartUseCase,
		ProvideForecastReadyHandler,

		// Delivery
		ProvideLimiter,
		ProvideChartHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
