// Package money provides currency-safe monetary arithmetic for invoice
// amounts. Values are held as integer cents and all derivations (GST
// splitting, rounding) go through shopspring/decimal so no floating-point
// error can leak into totals. Display formatting uses go-money.
package money

import (
	"errors"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Australian invoices only; all amounts are AUD.
const currencyCode = gomoney.AUD

// GST is charged at a flat 10%, so an inclusive amount is the exclusive
// amount times 1.1.
var gstDivisor = decimal.RequireFromString("1.1")

// ErrInvalidAmount indicates a string that could not be parsed as a
// monetary value.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Amount is a monetary value in AUD cents.
type Amount struct {
	cents int64
}

// FromCents creates an Amount from integer cents.
func FromCents(cents int64) Amount {
	return Amount{cents: cents}
}

// FromString parses amounts as they appear on invoices: "$63.64",
// "1,234.56", "60". Currency symbols, thousands separators, and surrounding
// whitespace are stripped before parsing.
func FromString(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}

	return Amount{cents: d.Shift(2).Round(0).IntPart()}, nil
}

// Cents returns the value in integer cents.
func (a Amount) Cents() int64 {
	return a.cents
}

// Decimal returns the value in major units as a decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.cents, -2)
}

// Float64 returns the value in major units. Cents always fit a float64
// mantissa at invoice scale, so this is safe for serialization.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// Add returns the sum of two amounts.
func (a Amount) Add(b Amount) Amount {
	return Amount{cents: a.cents + b.cents}
}

// GreaterThan reports whether a exceeds b.
func (a Amount) GreaterThan(b Amount) bool {
	return a.cents > b.cents
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.cents == 0
}

// ExclGST derives the tax-exclusive value from a tax-inclusive one by
// dividing by 1.1 and rounding half away from zero to 2 decimal places.
func (a Amount) ExclGST() Amount {
	excl := a.Decimal().Div(gstDivisor).Round(2)
	return Amount{cents: excl.Shift(2).IntPart()}
}

// Display renders the amount with currency symbol, e.g. "$63.64".
func (a Amount) Display() string {
	return gomoney.New(a.cents, currencyCode).Display()
}
