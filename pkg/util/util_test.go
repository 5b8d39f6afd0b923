package util

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		// Wednesday
		{time.Date(2024, 10, 9, 15, 4, 5, 0, time.UTC), time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)},
		// Monday stays
		{time.Date(2024, 10, 7, 0, 0, 1, 0, time.UTC), time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)},
		// Sunday goes back six days, across a month boundary
		{time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC), time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := StartOfWeek(tt.in); !got.Equal(tt.want) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC))
	if !got.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v", got)
	}
}

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat(" 1,234.5 ")
	if err != nil || v != 1234.5 {
		t.Fatalf("ParseFloat = %v, %v", v, err)
	}
}
