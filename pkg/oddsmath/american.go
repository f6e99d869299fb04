package oddsmath

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatAmerican renders an American price the way books display it
// American 150 → "+150"
// American -130 → "-130"
// American 0 → "0"
func FormatAmerican(price decimal.Decimal) string {
	rounded := price.Round(0)
	if rounded.IsPositive() {
		return "+" + rounded.String()
	}
	return rounded.String()
}

// FormatPoint renders a handicap with an explicit sign
// 1.5 → "+1.5"
// -1.5 → "-1.5"
// 0 → "+0"
func FormatPoint(point decimal.Decimal) string {
	if point.IsNegative() {
		return point.String()
	}
	return "+" + point.String()
}

// FormatLine renders a spread line with its price, e.g. "+1.5 (-110)"
func FormatLine(point, price decimal.Decimal) string {
	return fmt.Sprintf("%s (%s)", FormatPoint(point), FormatAmerican(price))
}
