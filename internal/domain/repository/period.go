package repository

import (
	"errors"
	"fmt"
)

// Period represents the aggregation bucket of a history series.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

var ErrUnsupportedPeriod = errors.New("unsupported period")

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default period.
func DefaultPeriod() Period { return PeriodMonth }

// NormalizePeriod converts raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// ParsePeriod is the strict form of NormalizePeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod(), nil
	}
	p := Period(s)
	if !IsValidPeriod(p) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, s)
	}
	return p, nil
}
