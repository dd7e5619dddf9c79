package chart

import (
	"strconv"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

// FormatPercent renders a fraction as a percentage, 0.125 -> "12.5%" with one decimal.
func FormatPercent(v float64, decimals int) string {
	return strconv.FormatFloat(v*100, 'f', decimals, 64) + "%"
}

// FormatDecimal renders v with a fixed number of decimals.
func FormatDecimal(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Formatter returns the tick and label formatters for a metric format. Ticks
// use whole percentages; labels carry one decimal.
func Formatter(f level.Format) (tick, label func(float64) string) {
	if f == level.FormatPercent {
		return func(v float64) string { return FormatPercent(v, 0) },
			func(v float64) string { return FormatPercent(v, 1) }
	}
	return func(v float64) string { return FormatDecimal(v, 1) },
		func(v float64) string { return FormatDecimal(v, 2) }
}
