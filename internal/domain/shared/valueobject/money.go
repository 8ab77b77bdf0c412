package valueobject

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// KWD is the only settlement currency; foreign legs are converted before they reach Money.
const KWD Currency = "KWD"

// DefaultCurrency is the default currency for the system
const DefaultCurrency = KWD

// MoneyScale is the number of minor-unit digits of the default currency,
// taken from the ISO 4217 data shipped with x/text (3 for KWD).
var MoneyScale = currencyScale(DefaultCurrency)

func currencyScale(c Currency) int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Round3 rounds half away from zero to the money scale.
func Round3(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Fixed3 renders a decimal with exactly the money scale.
func Fixed3(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyKWD creates Money in KWD
func NewMoneyKWD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: KWD}
}

// MustKWD parses a KWD amount and panics on malformed input. Intended for
// constants and tests.
func MustKWD(amount string) Money {
	m, err := NewMoneyFromString(amount, KWD)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroKWD returns a zero-value Money in KWD
func ZeroKWD() Money {
	return Money{amount: decimal.Zero, currency: KWD}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code, defaulting the zero value to KWD
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}
}

// Subtract returns the difference of both amounts
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount), currency: m.Currency()}
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.Currency()}
}

// DivideRound divides by an integer and rounds the quotient to the money scale.
// Returns error if divisor is zero
func (m Money) DivideRound(divisor int64) (Money, error) {
	if divisor == 0 {
		return Money{}, errors.New("cannot divide by zero")
	}
	// Extra precision before the final rounding keeps the half-way case exact.
	q := m.amount.DivRound(decimal.NewFromInt(divisor), MoneyScale+8)
	return Money{amount: Round3(q), currency: m.Currency()}, nil
}

// Round3 returns a new Money rounded to the money scale
func (m Money) Round3() Money {
	return Money{amount: Round3(m.amount), currency: m.Currency()}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.StringFixed(), m.Currency())
}

// StringFixed returns the amount with exactly the money scale, e.g. "123.450"
func (m Money) StringFixed() string {
	return Fixed3(m.amount)
}

// MarshalJSON renders the amount as a fixed-scale decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed())
}

// UnmarshalJSON accepts both "12.5" and 12.5.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ZeroKWD()
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	m.amount = amount
	m.currency = DefaultCurrency
	return nil
}

// Value implements driver.Valuer for database storage
// Stores as a numeric value (amount only)
func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (m *Money) Scan(value any) error {
	m.currency = DefaultCurrency
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		m.amount = decimal.NewFromFloat(v)
		return nil
	case int64:
		m.amount = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	return nil
}

// Sum adds up a list of amounts.
func Sum(values ...Money) Money {
	total := ZeroKWD()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
