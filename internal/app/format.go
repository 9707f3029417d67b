package service

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for values that were not measured.
const Placeholder = "–"

// locale drives number formatting and text collation in tables.
var locale = language.BritishEnglish

var printer = message.NewPrinter(locale)

func formatGBP(v float64) string {
	return printer.Sprintf("£%d", int64(math.Round(v)))
}

func formatHourly(v float64) string {
	return printer.Sprintf("£%.2f", v)
}

func formatMillions(v float64) string {
	return printer.Sprintf("£%.1fm", v)
}

func formatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

func formatCount(v int) string {
	return printer.Sprintf("%d", v)
}

func formatMetric(v float64, unit string) string {
	switch unit {
	case "gbp":
		return formatGBP(v)
	case "pct":
		return formatPercent(v)
	case "count":
		return formatCount(int(math.Round(v)))
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// raw is the export form of a number: no currency, no grouping.
func raw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
