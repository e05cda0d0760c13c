// Package format renders numbers for human-facing output.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	formatted := formatPositiveCurrency(d.Abs())
	if d.IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent returns value with one decimal place and a percent sign (e.g., "42.5%").
func Percent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(1) + "%"
}

// Count returns an integer-rounded quantity with thousands separators.
func Count(value float64) string {
	return groupThousands(decimal.NewFromFloat(value).Round(0).Abs().String(), value < 0)
}

func formatPositiveCurrency(value decimal.Decimal) string {
	parts := strings.SplitN(value.StringFixed(2), ".", 2)
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}
	return groupThousands(parts[0], false) + "." + decPart
}

func groupThousands(intPart string, negative bool) string {
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}
	if negative && intPart != "0" {
		return "-" + intPart
	}
	return intPart
}
