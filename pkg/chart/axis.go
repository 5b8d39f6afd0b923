package chart

import (
	"math"
	"strconv"
	"strings"
)

// ValueAxisTicks returns exactly three ticks (0, Max/2, Max), evenly
// spaced by value and projected with the render's projector.
func ValueAxisTicks(p Projector) []ValueTick {
	values := [3]float64{0, p.Domain.Max / 2, p.Domain.Max}
	ticks := make([]ValueTick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, ValueTick{Value: v, Y: p.Y(v), Text: FormatValue(v)})
	}
	return ticks
}

// CategoryAxisLabels returns one label per point of the combined series,
// each at its projected x. Overlapping labels are left as is.
func CategoryAxisLabels(combined Series, p Projector) []CategoryLabel {
	labels := make([]CategoryLabel, 0, len(combined))
	for i, o := range combined {
		labels = append(labels, CategoryLabel{Text: o.Label, X: p.X(i)})
	}
	return labels
}

// compactAbove is the magnitude from which tick text switches to exponent form.
const compactAbove = 1e12

// FormatValue formats a tick value with at most two decimals. Magnitudes of
// compactAbove and beyond use exponent form with four significant digits.
func FormatValue(v float64) string {
	return formatNumber(v, 2)
}

func formatNumber(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if math.Abs(v) >= compactAbove {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
