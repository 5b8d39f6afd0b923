package repository

import (
	"errors"
	"testing"
)

func TestNormalizePeriod(t *testing.T) {
	tests := map[string]Period{
		"":      PeriodMonth,
		"day":   PeriodDay,
		"week":  PeriodWeek,
		"month": PeriodMonth,
		"year":  PeriodMonth,
	}
	for in, want := range tests {
		if got := NormalizePeriod(in); got != want {
			t.Errorf("NormalizePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("week"); err != nil || p != PeriodWeek {
		t.Fatalf("ParsePeriod(week) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("hour"); !errors.Is(err, ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod, got %v", err)
	}
}
