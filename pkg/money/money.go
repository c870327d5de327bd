// Package money renders Vietnamese đồng amounts and holds the checkout
// shipping rule. VND has no minor unit, so amounts are rounded to whole
// đồng and grouped with dots (250000 -> "250.000đ").
package money

import (
	"math"
	"strconv"
)

// FormatVND renders an amount as a Vietnamese-locale currency string.
// Values arrive from loosely typed backend JSON, so any of nil, a number,
// or a numeric string is accepted; anything unusable renders as "0đ".
func FormatVND(v any) string {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return "0đ"
	}

	n := int64(math.Round(f))
	neg := n < 0
	if neg {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out) + "đ"
	}
	return string(out) + "đ"
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ShippingFee applies the free-shipping rule: orders at or above the
// threshold ship free, everything below pays the flat fee.
func ShippingFee(subtotal, threshold, fee float64) float64 {
	if subtotal >= threshold {
		return 0
	}
	return fee
}
