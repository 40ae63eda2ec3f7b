package utils

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarks = []string{"₹", "INR", "inr", "Rs.", "rs.", "Rs", "rs"}

// ParseAmount converts loosely typed form input into a decimal amount.
//
// Accepts common user-formatted strings like:
//   - "20,000"
//   - "₹ 20,000"
//   - "Rs. 1,234.50"
//
// Keeps digits, '.', and a leading '-' only.
func ParseAmount(field string, i interface{}) (decimal.Decimal, error) {
	switch v := i.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, NewValidationError(field, "must be a finite number")
		}
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, NewValidationError(field, "is not a number")
		}
		return d, nil
	case string:
		s := strings.TrimSpace(v)
		if s != "" {
			s = strings.ReplaceAll(s, ",", "")
			for _, mark := range currencyMarks {
				s = strings.ReplaceAll(s, mark, "")
			}
			s = strings.TrimSpace(s)
		}
		neg := false
		if strings.HasPrefix(s, "-") {
			neg = true
			s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
		}
		var b strings.Builder
		b.Grow(len(s) + 1)
		for _, r := range s {
			if (r >= '0' && r <= '9') || r == '.' {
				b.WriteRune(r)
			} else {
				return decimal.Zero, NewValidationError(field, "is not a number")
			}
		}
		clean := b.String()
		if clean == "" {
			return decimal.Zero, NewValidationError(field, "is not a number")
		}
		if neg {
			clean = "-" + clean
		}
		d, err := decimal.NewFromString(clean)
		if err != nil {
			return decimal.Zero, NewValidationError(field, "is not a number")
		}
		return d, nil
	default:
		return decimal.Zero, NewValidationError(field, "unsupported value %v", i)
	}
}
