// Package core holds the transaction domain model and the pure aggregation
// functions derived from it. Nothing in this package performs I/O.
//
// This file contains rupiah parsing and formatting. Amounts are whole-rupiah
// magnitudes (IDR has no fractional unit in everyday use); the sign is
// carried by the transaction type, never by the stored value.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative whole-rupiah magnitude.
type Money struct {
	Rupiah int64
}

func (m Money) Validate() error {
	if m.Rupiah < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Rupiah: m.Rupiah + o.Rupiah}
}

func (m Money) Sub(o Money) Money {
	return Money{Rupiah: m.Rupiah - o.Rupiah}
}

// ParseAmount converts a user-supplied amount string to rupiah.
//
// It accepts plain digit runs ("50000") as well as dot or comma thousand
// separators ("50.000", "50,000") and an optional "Rp" prefix. Negative
// values and fractional amounts are rejected.
//
// Examples:
//
//	ParseAmount("50000")    -> 50000, nil
//	ParseAmount("Rp50.000") -> 50000, nil
//	ParseAmount("-5")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// Thousand separators only; a separator followed by anything other than
	// exactly three digits is ambiguous and rejected.
	groups := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == ','
	})
	if len(groups) > 1 {
		for i, g := range groups {
			if i > 0 && len(g) != 3 {
				return Money{}, ErrInvalidAmount
			}
		}
	}
	digits := strings.Join(groups, "")
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Rupiah: v}, nil
}

// FormatRupiah renders an amount in the id-ID convention: "Rp50.000".
func FormatRupiah(m Money) string {
	neg := m.Rupiah < 0
	v := m.Rupiah
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}
