package chart

import "math"

// DefaultPaddingFactor leaves 20% headroom above the tallest point.
const DefaultPaddingFactor = 1.2

// Combine returns historical followed by forecast as a new series.
// Neither input is aliased by the result.
func Combine(historical, forecast Series) Series {
	out := make(Series, 0, len(historical)+len(forecast))
	out = append(out, historical...)
	return append(out, forecast...)
}

// ComputeDomain derives the value domain of a combined series.
//
// The domain is zero-based: Min is always 0 and Max is the largest value
// (floored at 0) inflated by paddingFactor. A zero Max falls back to 1 so
// downstream division is always defined. Non-positive factors use
// DefaultPaddingFactor. Infinite values are ignored and a padded Max that
// overflows keeps the raw maximum, so Max is always finite.
func ComputeDomain(combined Series, paddingFactor float64) Domain {
	if paddingFactor <= 0 {
		paddingFactor = DefaultPaddingFactor
	}

	rawMax := 0.0
	for _, o := range combined {
		if o.Value > rawMax && !math.IsInf(o.Value, 1) {
			rawMax = o.Value
		}
	}

	max := rawMax * paddingFactor
	if math.IsInf(max, 0) {
		max = rawMax
	}
	if max == 0 {
		max = 1
	}
	return Domain{Min: 0, Max: max}
}
