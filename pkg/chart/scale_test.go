package chart

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestComputeDomain(t *testing.T) {
	tests := []struct {
		name   string
		series Series
		factor float64
		want   Domain
	}{
		{"empty falls back to one", nil, 1.2, Domain{0, 1}},
		{"all zero falls back to one", Series{{"a", 0}, {"b", 0}}, 1.2, Domain{0, 1}},
		{"all negative floors at zero", Series{{"a", -5}, {"b", -1}}, 1.2, Domain{0, 1}},
		{"padded max", Series{{"a", 10}, {"b", 22}, {"c", 15}}, 1.2, Domain{0, 26.4}},
		{"mixed signs", Series{{"a", -30}, {"b", 5}}, 2, Domain{0, 10}},
		{"non-positive factor uses default", Series{{"a", 10}}, 0, Domain{0, 12}},
		{"factor one keeps max", Series{{"a", 7}}, 1, Domain{0, 7}},
		{"overflowing headroom keeps raw max", Series{{"a", 1.7e308}}, 1.2, Domain{0, 1.7e308}},
		{"infinite value ignored", Series{{"a", math.Inf(1)}, {"b", 5}}, 2, Domain{0, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDomain(tt.series, tt.factor)
			if !approx(got.Min, tt.want.Min) || !approx(got.Max, tt.want.Max) {
				t.Fatalf("ComputeDomain() = %+v, want %+v", got, tt.want)
			}
			if got.Max < got.Min || got.Max <= 0 {
				t.Fatalf("domain invariant broken: %+v", got)
			}
		})
	}
}

func TestComputeDomainIdempotent(t *testing.T) {
	s := Series{{"Jan", 10}, {"Feb", 20}, {"Mar", 15}, {"Apr", 18}, {"May", 22}}
	a := ComputeDomain(s, DefaultPaddingFactor)
	b := ComputeDomain(s, DefaultPaddingFactor)
	if a != b {
		t.Fatalf("domain differs between calls: %+v vs %+v", a, b)
	}
}

func TestCombineDoesNotAlias(t *testing.T) {
	hist := make(Series, 2, 8)
	hist[0] = Observation{"Jan", 1}
	hist[1] = Observation{"Feb", 2}
	fc := Series{{"Mar", 3}}

	got := Combine(hist, fc)
	if len(got) != 3 || got[2].Label != "Mar" {
		t.Fatalf("unexpected combined series %+v", got)
	}
	got[0].Value = 100
	if hist[0].Value != 1 {
		t.Fatalf("Combine mutated its input")
	}
	if len(hist) != 2 {
		t.Fatalf("Combine changed input length")
	}
}
