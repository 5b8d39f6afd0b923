package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	domrepo "ChartCast/internal/domain/repository"
	pkgch "ChartCast/pkg/clickhouse"
	"ChartCast/pkg/influxdb"
)

func TestPeriodTotalsQuery(t *testing.T) {
	tests := []struct {
		period domrepo.Period
		expr   string
	}{
		{domrepo.PeriodDay, "toStartOfDay(t)"},
		{domrepo.PeriodWeek, "toMonday(t)"},
		{domrepo.PeriodMonth, "toStartOfMonth(t)"},
	}
	for _, tt := range tests {
		q, err := periodTotalsQuery("chartcast.observations", tt.period)
		if err != nil {
			t.Fatalf("%s: %v", tt.period, err)
		}
		if !strings.Contains(q, tt.expr) || !strings.Contains(q, "FROM chartcast.observations") {
			t.Errorf("%s query missing parts:\n%s", tt.period, q)
		}
		if !strings.Contains(q, "ORDER BY bucket ASC") {
			t.Errorf("%s query is not ascending", tt.period)
		}
	}
	if _, err := periodTotalsQuery("x", "hour"); !errors.Is(err, domrepo.ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod, got %v", err)
	}
}

type fakeFlux struct {
	got  string
	recs []influxdb.Record
	err  error
}

func (f *fakeFlux) Query(_ context.Context, flux string) ([]influxdb.Record, error) {
	f.got = flux
	return f.recs, f.err
}

func (f *fakeFlux) Health(context.Context) error { return f.err }

func TestInfluxHistoryStore(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeFlux{recs: []influxdb.Record{{Time: jan, Value: 10}, {Time: feb, Value: 20}}}
	s := NewInfluxHistoryStore(q, InfluxSource{Bucket: "obs", Measurement: "observation", Field: "value"})

	got, err := s.PeriodTotals(context.Background(), `ac"me`, domrepo.PeriodMonth, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[1].Bucket.Equal(feb) || got[1].Total != 20 || got[0].Entity != `ac"me` {
		t.Fatalf("totals = %+v", got)
	}
	for _, want := range []string{`from(bucket: "obs")`, "range(start: -13mo)", "every: 1mo", "limit(n: 12)", `r.entity == "ac\"me"`} {
		if !strings.Contains(q.got, want) {
			t.Errorf("flux missing %q:\n%s", want, q.got)
		}
	}
}

func TestInfluxWeekOffset(t *testing.T) {
	flux, err := periodTotalsFlux(InfluxSource{Bucket: "b", Measurement: "m", Field: "f"}, "e", domrepo.PeriodWeek, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(flux, "every: 1w, offset: 4d") || !strings.Contains(flux, "range(start: -5w)") {
		t.Fatalf("unexpected flux:\n%s", flux)
	}
}

func TestInfluxHistoryStoreError(t *testing.T) {
	s := NewInfluxHistoryStore(&fakeFlux{err: errors.New("down")}, InfluxSource{})
	if _, err := s.PeriodTotals(context.Background(), "e", domrepo.PeriodDay, 3); err == nil {
		t.Fatalf("expected error")
	}
	if err := s.Health(context.Background()); err == nil {
		t.Fatalf("expected health error")
	}
}

func TestCHHistoryStoreIntegration(t *testing.T) {
	host := os.Getenv("CLICKHOUSE_TEST_HOST")
	if host == "" {
		t.Skip("CLICKHOUSE_TEST_HOST not set, skipping integration test")
	}
	ctx := context.Background()
	ch, err := pkgch.NewClient(pkgch.WithHost(host), pkgch.WithDatabase("chartcast_test"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer ch.Close()
	if err := ch.InitSchema(ctx, Schema("chartcast_test", "observations")); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := ch.DB().ExecContext(ctx, "INSERT INTO chartcast_test.observations VALUES ('it', '2024-01-05 10:00:00', 4), ('it', '2024-01-20 10:00:00', 6), ('it', '2024-02-02 10:00:00', 5)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	defer ch.DB().ExecContext(ctx, "TRUNCATE TABLE chartcast_test.observations")

	s := NewCHHistoryStore(ch, "observations")
	got, err := s.PeriodTotals(ctx, "it", domrepo.PeriodMonth, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Total != 10 || got[1].Total != 5 {
		t.Fatalf("totals = %+v", got)
	}
}
