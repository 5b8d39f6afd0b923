package influxdb

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{int64(3), 3, true},
		{uint64(4), 4, true},
		{"5", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("toFloat(%v) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestConnectIntegration(t *testing.T) {
	url := os.Getenv("INFLUX_TEST_URL")
	if url == "" {
		t.Skip("INFLUX_TEST_URL not set, skipping integration test")
	}
	c, err := Connect(context.Background(), url, os.Getenv("INFLUX_TEST_TOKEN"), "chartcast")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(context.Background(), "http://127.0.0.1:1", "", "org")
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
}
