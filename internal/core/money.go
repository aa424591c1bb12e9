// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals. They are converted to float64 only at the
// reporting boundary, where two decimal places are all anyone reads.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a non-negative monetary amount with exact decimal arithmetic.
type Money struct {
	decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{Decimal: decimal.Zero}

// ParseMoney converts a plain decimal string ("250", "12.5", "12.") to Money.
//
// Signs, exponents and thousands separators are rejected: the intake grammar only
// produces digits with an optional decimal point.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+-eE, ") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Validate() error {
	if m.Decimal.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the amount as float64 for callers outside the ledger.
func (m Money) Float() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// Fixed formats the amount with exactly two decimals ("250.00").
func (m Money) Fixed() string {
	return m.Decimal.StringFixed(2)
}

// Plain formats the amount the way the audit log expects it: integral values
// carry a trailing ".0" ("250.0"), everything else keeps its significant digits.
func (m Money) Plain() string {
	s := m.Decimal.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Sum adds up a slice of amounts.
func Sum(amounts ...Money) Money {
	total := ZeroMoney
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
