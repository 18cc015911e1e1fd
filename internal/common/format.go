package common

import (
	"math"

	"github.com/shopspring/decimal"
)

// notAvailable mirrors models.NotAvailable; common must not import models.
const notAvailable = "N/A"

var hundred = decimal.NewFromInt(100)

// missing reports whether v cannot be displayed (nil, NaN or infinite).
func missing(v *float64) bool {
	return v == nil || math.IsNaN(*v) || math.IsInf(*v, 0)
}

// FormatPct formats a fraction as a percentage with two decimals (0.1234 -> "12.34%").
// Nil and non-finite values render as "N/A".
func FormatPct(v *float64) string {
	if missing(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(*v).Mul(hundred).StringFixed(2) + "%"
}

// FormatRatio formats a ratio with two decimals. Nil renders as "N/A".
func FormatRatio(v *float64) string {
	if missing(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// FormatMoney formats a price as "$1,234.56". Nil renders as "N/A".
func FormatMoney(v *float64) string {
	if missing(v) {
		return notAvailable
	}
	d := decimal.NewFromFloat(*v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]
	return sign + "$" + groupThousands(intPart) + frac
}

// FormatSignedPct formats a fraction as a signed percentage ("+1.50%", "-0.25%").
func FormatSignedPct(v float64) string {
	if missing(&v) {
		return notAvailable
	}
	s := decimal.NewFromFloat(v).Mul(hundred).StringFixed(2) + "%"
	if v > 0 {
		return "+" + s
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
