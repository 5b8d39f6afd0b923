package clickhouse

import (
	"net/url"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithPort(9440),
		WithDatabase("chartcast"),
		WithCredentials("reader", "p@ss"),
		WithHTTP(true),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(cfg)
	}

	u, err := url.Parse(buildDSN(cfg))
	if err != nil {
		t.Fatalf("dsn does not parse: %v", err)
	}
	if u.Host != "ch.local:9440" || u.Path != "/chartcast" {
		t.Fatalf("host/path = %s %s", u.Host, u.Path)
	}
	if pw, _ := u.User.Password(); u.User.Username() != "reader" || pw != "p@ss" {
		t.Fatalf("credentials not preserved: %v", u.User)
	}
	q := u.Query()
	if q.Get("protocol") != "http" || q.Get("max_execution_time") != "30" || q.Get("dial_timeout") != "5s" {
		t.Fatalf("query = %v", q)
	}
}

func TestOptionsKeepDefaultsOnZero(t *testing.T) {
	cfg := defaultConfig()
	WithPort(0)(cfg)
	WithDatabase("")(cfg)
	WithCredentials("", "")(cfg)
	if cfg.Port != 9000 || cfg.Database != "default" || cfg.User != "default" {
		t.Fatalf("defaults overwritten: %+v", cfg)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
