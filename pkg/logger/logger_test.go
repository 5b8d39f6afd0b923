package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel)

	l.Info("chart rendered",
		String("entity", "acme"),
		Int("points", 5),
		Float("domain_max", 26.4),
		Duration("duration_ms", 1500*time.Millisecond),
		Bool("forecast", true),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	checks := map[string]interface{}{
		"message":     "chart rendered",
		"entity":      "acme",
		"points":      float64(5),
		"domain_max":  26.4,
		"duration_ms": float64(1500),
		"forecast":    true,
		"error":       "boom",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("warn was filtered")
	}
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel).With(String("route", "/api/chart"))
	l.Info("ok")
	if !bytes.Contains(buf.Bytes(), []byte(`"route":"/api/chart"`)) {
		t.Fatalf("child field missing: %s", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	NewNop().Error("nothing", String("k", "v"))
}
