package money

import "errors"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Currency is a settlement instrument, not an ISO code: the platform settles
// in fiat, its utility token, or prepaid credits.
type Currency string

const (
	Fiat   Currency = "FIAT"
	Token  Currency = "TOKEN"
	Credit Currency = "CREDIT"
)

func (c Currency) Valid() bool {
	switch c {
	case Fiat, Token, Credit:
		return true
	}
	return false
}

// BpsScale is the denominator for fractional policy values (discounts,
// season modifiers, refund tiers): 10000 basis points == 1.0.
const BpsScale = int64(10_000)

// Money keeps amounts in integer minor units to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency Currency
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency Currency) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{Amount: 0, Currency: currency}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Neg returns the negated amount preserving currency.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// MulBps applies a basis-point fraction, rounding half to even on the minor
// unit. MulBps(10000) is the identity.
func (m Money) MulBps(bps int64) Money {
	return Money{Amount: mulDivHalfEven(m.Amount, bps, BpsScale), Currency: m.Currency}
}

// Convert re-denominates the amount into another currency at the given
// basis-point rate (10000 == parity). Conversion is always explicit; nothing
// else in this package coerces across currencies.
func (m Money) Convert(to Currency, rateBps int64) Money {
	return Money{Amount: mulDivHalfEven(m.Amount, rateBps, BpsScale), Currency: to}
}

// Min returns the smaller of two same-currency amounts.
func (m Money) Min(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.Amount < m.Amount {
		return other, nil
	}
	return m, nil
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative returns true for amounts below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// IsSet reports whether the value carries a currency at all; the zero Money
// is the documented "component absent" marker.
func (m Money) IsSet() bool {
	return m.Currency != ""
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// mulDivHalfEven computes amount*mul/div with banker's rounding. div must be
// positive; amount and mul may be negative.
func mulDivHalfEven(amount, mul, div int64) int64 {
	n := amount * mul
	q := n / div
	r := n % div
	if r == 0 {
		return q
	}
	abs := r
	if abs < 0 {
		abs = -abs
	}
	twice := abs * 2
	if twice < div {
		return q
	}
	if twice == div && q%2 == 0 {
		return q
	}
	if n < 0 {
		return q - 1
	}
	return q + 1
}
