package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (cents) with its ISO 4217 code.
// Amounts on the ledger are never negative.
type Money struct {
	MinorUnits int64  `json:"minorUnits"`
	Currency   string `json:"currency"`
}

func NewMoney(minorUnits int64, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return Money{}, fmt.Errorf("currency must be a 3 letter code, got %q", currency)
	}
	if minorUnits < 0 {
		return Money{}, fmt.Errorf("amount cannot be negative, got %d", minorUnits)
	}
	return Money{MinorUnits: minorUnits, Currency: code}, nil
}

// MoneyFromDecimal converts a major-unit decimal amount ("5.00") to Money.
func MoneyFromDecimal(amount decimal.Decimal, currency string) (Money, error) {
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("amount %s has more than two decimal places", amount.String())
	}
	return NewMoney(minor.IntPart(), currency)
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{MinorUnits: m.MinorUnits + other.MinorUnits, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.MinorUnits > m.MinorUnits {
		return Money{}, fmt.Errorf("amount cannot go negative: %s - %s", m.String(), other.String())
	}
	return Money{MinorUnits: m.MinorUnits - other.MinorUnits, Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.MinorUnits == 0
}

func (m Money) IsPositive() bool {
	return m.MinorUnits > 0
}

func (m Money) LessThan(other Money) bool {
	return m.MinorUnits < other.MinorUnits
}

func (m Money) Equals(other Money) bool {
	return m.MinorUnits == other.MinorUnits && m.Currency == other.Currency
}

// Decimal renders the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.MinorUnits, -2)
}

// String renders the user-facing form, e.g. "40.00 EUR".
func (m Money) String() string {
	return m.Decimal().StringFixed(2) + " " + m.Currency
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return Rejectf(RejectCurrencyMismatch, "Cannot mix currencies %s and %s", m.Currency, other.Currency)
	}
	return nil
}
