package util

import (
	"strconv"
	"strings"
)

// ParseFloat parses a decimal that may use a thousands separator ("1,234.5").
func ParseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}
