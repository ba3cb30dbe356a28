// Package format provides number formatting helpers shared by the chart
// builders and the CLI.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultFractionDigits is the number of fraction digits used when callers
// don't ask for a specific precision.
const DefaultFractionDigits = 2

var printer = message.NewPrinter(language.English)

// Percentage formats a value on a 0-100 scale as a locale aware percentage,
// e.g. Percentage(80.42, 2) -> "80.42%".
func Percentage(value float64, minimumFractionDigits int) string {
	if minimumFractionDigits < 0 {
		minimumFractionDigits = 0
	}
	return printer.Sprint(number.Percent(value/100.0,
		number.MinFractionDigits(minimumFractionDigits),
		number.MaxFractionDigits(minimumFractionDigits),
	))
}

// PercentageDefault formats value with DefaultFractionDigits.
func PercentageDefault(value float64) string {
	return Percentage(value, DefaultFractionDigits)
}
