package features

import (
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	"ChartCast/pkg/chart"
	"ChartCast/pkg/util"
)

// Label layouts per period.
const (
	dayLayout   = "Jan 02"
	monthLayout = "Jan 06"
)

// AlignToPeriod rounds t down to the start of its period bucket.
func AlignToPeriod(t time.Time, p domrepo.Period) time.Time {
	switch p {
	case domrepo.PeriodDay:
		return util.StartOfDay(t)
	case domrepo.PeriodWeek:
		return util.StartOfWeek(t)
	default:
		return util.StartOfMonth(t)
	}
}

// StepPeriod moves t by k periods (k may be negative).
func StepPeriod(t time.Time, p domrepo.Period, k int) time.Time {
	switch p {
	case domrepo.PeriodDay:
		return t.AddDate(0, 0, k)
	case domrepo.PeriodWeek:
		return t.AddDate(0, 0, 7*k)
	default:
		// anchored at day 1, so no month overflow
		return t.AddDate(0, k, 0)
	}
}

// FormatLabel renders a bucket start as a category-axis label.
func FormatLabel(t time.Time, p domrepo.Period) string {
	if p == domrepo.PeriodMonth {
		return t.Format(monthLayout)
	}
	return t.Format(dayLayout)
}

// HistorySeries maps period totals to a labeled series, preserving order.
func HistorySeries(totals []models.PeriodTotal, p domrepo.Period) chart.Series {
	out := make(chart.Series, 0, len(totals))
	for _, pt := range totals {
		out = append(out, chart.Observation{Label: FormatLabel(pt.Bucket, p), Value: pt.Total})
	}
	return out
}

// ForecastSeries labels forecast values by stepping one period per value past last.
func ForecastSeries(last time.Time, p domrepo.Period, values []float64) chart.Series {
	if len(values) == 0 {
		return nil
	}
	base := AlignToPeriod(last, p)
	out := make(chart.Series, 0, len(values))
	for i, v := range values {
		out = append(out, chart.Observation{Label: FormatLabel(StepPeriod(base, p, i+1), p), Value: v})
	}
	return out
}

// Totals extracts the numeric history sent to the forecaster.
func Totals(totals []models.PeriodTotal) []float64 {
	out := make([]float64, len(totals))
	for i, pt := range totals {
		out[i] = pt.Total
	}
	return out
}
