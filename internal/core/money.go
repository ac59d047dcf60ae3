// Package core holds the domain model: transactions, money, filtering and
// aggregation. Everything here is pure and free of I/O.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount of Thai baht held as integer satang (1/100 baht).
// Calculations stay in satang; baht is a presentation concern.
type Money struct {
	Satang int64
}

// MarshalJSON encodes the amount as a bare satang integer.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Satang, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Satang = v
	return nil
}

// ParseDecimalToSatang converts a user-typed decimal amount to satang.
//
// Commas are treated as thousands separators and stripped (the entry form
// is free text). Only positive values are accepted. Half-up rounding is
// applied on the third decimal digit.
func ParseDecimalToSatang(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
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
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracSatang int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracSatang = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracSatang += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracSatang++
			}
		}
	}
	satang := iv*100 + fracSatang
	if satang <= 0 {
		return 0, ErrInvalidAmount
	}
	return satang, nil
}

// Baht returns the baht value as a float64 for display purposes only.
func (m Money) Baht() float64 {
	return float64(m.Satang) / 100.0
}

// FormatBaht renders the amount as a grouped decimal string, e.g. "1,234.50".
func FormatBaht(m Money) string {
	neg := m.Satang < 0
	satang := m.Satang
	if neg {
		satang = -satang
	}
	baht := satang / 100
	rem := satang % 100

	digits := strconv.FormatInt(baht, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	out := b.String()
	if rem > 0 {
		out += "." + twoDigits(rem)
	}
	if neg {
		return "-" + out
	}
	return out
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
