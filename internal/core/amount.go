package core

import (
	"math"
	"strconv"
)

// ParseAmount converts user-typed text into a whole, non-negative amount.
//
// Only ASCII digits are accepted: no sign, no decimal separator, no
// surrounding whitespace. "10.50" is rejected on purpose; amounts are whole units.
//
// Examples:
//   ParseAmount("10")   -> 10, nil
//   ParseAmount("007")  -> 7, nil
//   ParseAmount("-5")   -> 0, ErrInvalidAmount
//   ParseAmount("10.5") -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidAmount
		}
	}
	// Digits only, so the only possible failure left is overflow.
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// AddAmounts returns a+b for non-negative amounts, or false when the sum
// does not fit in an amount.
func AddAmounts(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

// FormatAmount renders an amount the way it is shown in list items and charts.
func FormatAmount(v int64) string {
	return strconv.FormatInt(v, 10)
}
