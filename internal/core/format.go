package core

import "github.com/shopspring/decimal"

// Format renders value with exactly precision fractional digits and prepends
// the currency symbol with no separator. There is no digit grouping.
//
// Rounding is half away from zero on the shortest decimal representation of
// value, so 1234.5 at precision 0 is "1235" and -2.5 is "-3".
func Format(value float64, symbol Currency, precision Precision) string {
	return string(symbol) + decimal.NewFromFloat(value).StringFixed(int32(precision))
}

// FormatRow formats every value of a row with the same settings.
func FormatRow(values []float64, symbol Currency, precision Precision) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = Format(v, symbol, precision)
	}
	return cells
}
