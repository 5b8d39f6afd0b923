package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c := Default()
	if c.Server.Port != 8080 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.History.Backend != BackendClickHouse || c.Forecast.Mode != ForecastSync {
		t.Fatalf("backend=%s mode=%s", c.History.Backend, c.Forecast.Mode)
	}
	if c.Chart.PaddingFactor != 1.2 || c.Chart.Width != 600 {
		t.Fatalf("chart defaults = %+v", c.Chart)
	}
	if c.Forecast.TTL != 10*time.Minute {
		t.Fatalf("forecast ttl = %v", c.Forecast.TTL)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	raw := `
environment: production
server:
  port: 9090
history:
  backend: influxdb
influxdb:
  url: http://influx:8086
  token: secret
forecast:
  mode: "off"
chart:
  padding_factor: 1.5
`
	c, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 || c.History.Backend != BackendInfluxDB {
		t.Fatalf("unexpected %+v", c.Server)
	}
	if c.InfluxDB.Bucket != "observations" {
		t.Fatalf("bucket default lost: %q", c.InfluxDB.Bucket)
	}
	if c.Chart.PaddingFactor != 1.5 || c.Chart.Height != 260 {
		t.Fatalf("chart = %+v", c.Chart)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"sync needs url", func(c *Config) { c.Forecast.URL = "" }, "forecast.url"},
		{"async needs brokers", func(c *Config) { c.Forecast.Mode = ForecastAsync }, "kafka.brokers"},
		{"bad mode", func(c *Config) { c.Forecast.Mode = "later" }, "forecast.mode"},
		{"bad backend", func(c *Config) { c.History.Backend = "csv" }, "history.backend"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"padding factor", func(c *Config) { c.Chart.PaddingFactor = 0.5 }, "padding_factor"},
		{"horizon", func(c *Config) { c.Forecast.Horizon = 100 }, "horizon"},
		{"padding wider than chart", func(c *Config) { c.Chart.PaddingX = 300 }, "chart.padding_x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Forecast.URL = "http://forecaster"
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("err = %v, want mention of %q", err, tt.errSub)
			}
		})
	}

	ok := Default()
	ok.Forecast.URL = "http://forecaster"
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"FORECAST_MODE": "async",
		"INFLUX_TOKEN":  "tok",
		"REDIS_ENABLED": "true",
		"REDIS_ADDR":    "",
	}
	c := Default()
	c.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if c.Forecast.Mode != ForecastAsync || c.InfluxDB.Token != "tok" || !c.Redis.Enabled {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.Redis.Addr != "localhost:6379" {
		t.Fatalf("empty env value overrode default: %q", c.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("forecast:\n  mode: \"off\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Forecast.Mode != ForecastOff {
		t.Fatalf("mode = %s", c.Forecast.Mode)
	}
}
