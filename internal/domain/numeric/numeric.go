// Package numeric coerces raw user input into bounded numbers.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// decimals is the precision every coerced value is rounded to.
const decimals = 2

// ParseClamp converts raw input into a number within [lo, hi].
//
// Rules, applied in order:
//  1. surrounding whitespace is ignored; an empty string is 0
//  2. anything that does not parse as a finite number is 0
//  3. the value is clamped to [lo, hi] (hi may be +Inf)
//  4. the result is rounded to two decimal places
//
// ParseClamp never fails; numeric fields are coerced, not rejected.
func ParseClamp(raw string, lo, hi float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Clamp(0, lo, hi)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = 0
	}
	return Clamp(v, lo, hi)
}

// Clamp applies the non-parsing half of ParseClamp to an already decoded
// number: non-finite values become 0, then the clamp and rounding apply.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return round(v)
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func round(v float64) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
