package main

import (
	"flag"
	"log"
	"os"

	"ChartCast/internal/di"
	"ChartCast/pkg/config"
	applogger "ChartCast/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := applogger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	l.Info("config loaded",
		applogger.String("env", cfg.Environment),
		applogger.String("history", cfg.History.Backend),
		applogger.String("forecast_mode", cfg.Forecast.Mode),
	)

	app, cleanup, err := di.InitializeApp(cfg, l)
	if err != nil {
		l.Error("app initialization failed", applogger.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		l.Error("app error", applogger.Error(err))
		cleanup()
		os.Exit(1)
	}
}
