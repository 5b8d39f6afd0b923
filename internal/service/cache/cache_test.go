package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := NewTTLCache()
	c.now = clk.now

	_ = c.SetBytes(ctx, "k", []byte("v"), time.Minute)
	if b, ok, _ := c.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("fresh entry missing")
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expired entry returned")
	}
}

func TestTTLCacheSetNX(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := NewTTLCache()
	c.now = clk.now

	if ok, _ := c.SetNX(ctx, "p", []byte("1"), time.Minute); !ok {
		t.Fatalf("first SetNX should win")
	}
	if ok, _ := c.SetNX(ctx, "p", []byte("1"), time.Minute); ok {
		t.Fatalf("second SetNX should lose")
	}
	clk.t = clk.t.Add(time.Hour)
	if ok, _ := c.SetNX(ctx, "p", []byte("1"), time.Minute); !ok {
		t.Fatalf("SetNX after expiry should win")
	}
	_ = c.Delete(ctx, "p")
	if ok, _ := c.SetNX(ctx, "p", []byte("1"), 0); !ok {
		t.Fatalf("SetNX after delete should win")
	}
}

func TestForecastStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(NewTTLCache(), time.Minute, 0)

	if _, err := s.Get(ctx, "acme", domrepo.PeriodMonth); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f := models.Forecast{Entity: "acme", Period: "month", Values: []float64{18, 22}, Model: "ets"}
	if err := s.Put(ctx, f); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "acme", domrepo.PeriodMonth)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Values) != 2 || got.Values[1] != 22 || got.Model != "ets" {
		t.Fatalf("got %+v", got)
	}
	// other periods are separate keys
	if _, err := s.Get(ctx, "acme", domrepo.PeriodWeek); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("week should miss, got %v", err)
	}
}

func TestForecastStorePending(t *testing.T) {
	ctx := context.Background()
	s := NewForecastStore(NewTTLCache(), time.Minute, time.Minute)

	if ok, _ := s.MarkPending(ctx, "acme", domrepo.PeriodDay); !ok {
		t.Fatalf("first mark should succeed")
	}
	if ok, _ := s.MarkPending(ctx, "acme", domrepo.PeriodDay); ok {
		t.Fatalf("second mark should fail while pending")
	}
	if err := s.ClearPending(ctx, "acme", domrepo.PeriodDay); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.MarkPending(ctx, "acme", domrepo.PeriodDay); !ok {
		t.Fatalf("mark after clear should succeed")
	}
}
