// Package core holds the expense record model, amount handling, and the
// pure aggregation and grouping logic the rest of the application consumes.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an INR amount stored in paise to keep arithmetic exact.
type Money struct {
	Paise int64
}

// FromRupees builds a Money from a whole-rupee value.
func FromRupees(rupees int64) Money {
	return Money{Paise: rupees * 100}
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Paise == 0
}

// ParseAmount converts a decimal string from a form into paise with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Entry validation is strict: malformed input,
// negative values, and zero all return ErrInvalidAmount.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPaise int64
	if len(fracPart) > 0 {
		fracPaise = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaise += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Paise: paise}, nil
}

// CoerceAmount is the lenient counterpart used during aggregation. Stored
// amounts may carry malformed values from older clients; those contribute
// zero to every total instead of failing the whole computation. Negative
// values also coerce to zero so sums stay non-negative.
func CoerceAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Money{}
	}
	// Amounts too large for int64 paise would wrap negative on conversion.
	if f >= float64(math.MaxInt64)/100 {
		return Money{}
	}
	return Money{Paise: int64(math.Round(f * 100))}
}

// FormatINR renders an amount as rupees with Indian digit grouping, e.g.
// Money{Paise: 1000000000} -> "₹1,00,00,000". Paise are shown only when
// the amount is not whole rupees.
func FormatINR(m Money) string {
	paise := m.Paise
	negative := paise < 0
	if negative {
		paise = -paise
	}
	out := groupIndian(paise / 100)
	if rem := paise % 100; rem != 0 {
		out += fmt.Sprintf(".%02d", rem)
	}
	if negative {
		out = "-" + out
	}
	return "₹" + out
}

func (m Money) String() string {
	return FormatINR(m)
}

// groupIndian applies the lakh/crore grouping: the last three digits form
// one group, every group before that has two digits.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
