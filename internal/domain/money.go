package domain

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount of Indian rupees held in paise so that repeated
// additions never drift.
type Money int64

var maxPaise = decimal.NewFromInt(math.MaxInt64)

// Rupees builds a Money value from a whole rupee amount.
func Rupees(r int64) Money {
	return Money(r * 100)
}

// ParseMoney reads a rupee amount such as "150" or "149.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	paise := d.Shift(2)
	if paise.GreaterThan(maxPaise) {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return Money(paise.IntPart()), nil
}

// Times multiplies the amount by a quantity.
func (m Money) Times(quantity int) Money {
	return m * Money(quantity)
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount for display, e.g. "₹380.00".
func (m Money) String() string {
	return "₹" + m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "null" || raw == "" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
