package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ChartCast/pkg/logger"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Log     logger.Config `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	History struct {
		Backend string `yaml:"backend" default:"clickhouse"`
		Table   string `yaml:"table" default:"observations"`
	} `yaml:"history"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"chartcast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	InfluxDB struct {
		URL         string `yaml:"url" default:"http://localhost:8086"`
		Token       string `yaml:"token"`
		Org         string `yaml:"org" default:"chartcast"`
		Bucket      string `yaml:"bucket" default:"observations"`
		Measurement string `yaml:"measurement" default:"observation"`
		Field       string `yaml:"field" default:"value"`
	} `yaml:"influxdb"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"chartcast:"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic" default:"forecast.requested"`
		ReadyTopic   string   `yaml:"ready_topic" default:"forecast.ready"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"chartcast"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Forecast struct {
		Mode    string        `yaml:"mode" default:"sync"`
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout" default:"3s"`
		Retries int           `yaml:"retries" default:"2"`
		TTL     time.Duration `yaml:"ttl" default:"10m"`
		Horizon int           `yaml:"horizon" default:"3"`
	} `yaml:"forecast"`
	Chart struct {
		Width             float64 `yaml:"width" default:"600"`
		Height            float64 `yaml:"height" default:"260"`
		PaddingX          float64 `yaml:"padding_x" default:"40"`
		PaddingY          float64 `yaml:"padding_y" default:"30"`
		PaddingFactor     float64 `yaml:"padding_factor" default:"1.2"`
		LineColor         string  `yaml:"line_color" default:"#2563eb"`
		ForecastLineColor string  `yaml:"forecast_line_color" default:"#f59e0b"`
	} `yaml:"chart"`
	RateLimit struct {
		Enabled  bool    `yaml:"enabled" default:"true"`
		Capacity float64 `yaml:"capacity" default:"20"`
		Refill   float64 `yaml:"refill_per_sec" default:"5"`
	} `yaml:"ratelimit"`
	Stream struct {
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
	} `yaml:"stream"`
}

// Forecast modes.
const (
	ForecastSync  = "sync"
	ForecastAsync = "async"
	ForecastOff   = "off"
)

// History backends.
const (
	BackendClickHouse = "clickhouse"
	BackendInfluxDB   = "influxdb"
)

// Default returns a config populated only from struct-tag defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// tags are static; failure here is a programming error
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("HISTORY_BACKEND", &c.History.Backend)
	str("CLICKHOUSE_HOST", &c.ClickHouse.Host)
	str("CLICKHOUSE_PASSWORD", &c.ClickHouse.Password)
	str("INFLUX_URL", &c.InfluxDB.URL)
	str("INFLUX_TOKEN", &c.InfluxDB.Token)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("FORECAST_URL", &c.Forecast.URL)
	str("FORECAST_MODE", &c.Forecast.Mode)
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := lookup("REDIS_ENABLED"); ok {
		c.Redis.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.History.Backend {
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required")
		}
	case BackendInfluxDB:
		if c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			return fmt.Errorf("influxdb.url, influxdb.org and influxdb.bucket are required")
		}
	default:
		return fmt.Errorf("history.backend must be 'clickhouse' or 'influxdb', got '%s'", c.History.Backend)
	}
	switch c.Forecast.Mode {
	case ForecastOff:
	case ForecastSync:
		if c.Forecast.URL == "" {
			return fmt.Errorf("forecast.url is required in sync mode")
		}
	case ForecastAsync:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers are required in async forecast mode")
		}
	default:
		return fmt.Errorf("forecast.mode must be 'sync', 'async' or 'off', got '%s'", c.Forecast.Mode)
	}
	if c.Forecast.Horizon < 0 || c.Forecast.Horizon > 60 {
		return fmt.Errorf("forecast.horizon must be within [0, 60]")
	}
	if c.Chart.PaddingFactor < 1 {
		return fmt.Errorf("chart.padding_factor must be >= 1")
	}
	if 2*c.Chart.PaddingX >= c.Chart.Width || 2*c.Chart.PaddingY >= c.Chart.Height {
		return fmt.Errorf("chart.padding_x and chart.padding_y must leave room inside width and height")
	}
	return nil
}
