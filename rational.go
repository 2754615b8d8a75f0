// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"encoding"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	_ encoding.TextUnmarshaler = (*Rational)(nil)
	_ encoding.TextMarshaler   = Rational{}
)

// Rational is a fraction as stored in the RATIONAL value type.
// It is never reduced implicitly, see Reduce.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns num/den. A zero denominator is allowed.
func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Numerator returns the numerator.
func (r Rational) Numerator() int64 {
	return r.Num
}

// Denominator returns the denominator.
func (r Rational) Denominator() int64 {
	return r.Den
}

// Float64 returns r as a float64, or math.MaxFloat64 if the denominator is zero.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return math.MaxFloat64
	}
	return float64(r.Num) / float64(r.Den)
}

// Int64 returns the truncated quotient, or math.MaxInt64 if the denominator is zero.
func (r Rational) Int64() int64 {
	if r.Den == 0 {
		return math.MaxInt64
	}
	return r.Num / r.Den
}

// Reduce divides out common divisors in place.
// It scans downwards from min(sqrt(|num|), sqrt(|den|)) to 2 and restarts
// after each division, so divisors above that bound are not found.
func (r *Rational) Reduce() {
	if r.Den == 0 {
		return
	}
	n, d := abs64(r.Num), abs64(r.Den)
	limit := min(int64(math.Sqrt(float64(n))), int64(math.Sqrt(float64(d))))
	for i := limit; i >= 2; i-- {
		if r.Num%i == 0 && r.Den%i == 0 {
			r.Num /= i
			r.Den /= i
			r.Reduce()
			return
		}
	}
}

// Compare returns -1, 0 or 1 depending on whether r is less than, equal to or
// greater than o. The cross product difference is clamped to the int32 range
// before its sign is taken.
func (r Rational) Compare(o Rational) int {
	diff := r.Num*o.Den - o.Num*r.Den
	if diff > math.MaxInt32 {
		diff = math.MaxInt32
	} else if diff < math.MinInt32 {
		diff = math.MinInt32
	}
	switch {
	case diff < 0:
		return -1
	case diff > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether r and o compare equal, so 1/2 equals 2/4.
func (r Rational) Equal(o Rational) bool {
	return r.Compare(o) == 0
}

// String returns the string representation of the rational number.
// If the denominator is 1, the string will be the numerator only.
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Rational) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

func (r *Rational) UnmarshalText(text []byte) error {
	s := string(text)
	if !strings.Contains(s, "/") {
		num, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.Num = num
		r.Den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.Num, &r.Den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
