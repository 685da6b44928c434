package payment

import (
	"errors"
	"fmt"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

var ErrNegativeBalance = errors.New("payment: balances cannot be negative")

// Instrument names a settlement source in errors and allocations.
type Instrument string

const (
	InstrumentFiat   Instrument = "fiat"
	InstrumentToken  Instrument = "token"
	InstrumentCredit Instrument = "credit"
)

// InsufficientBalanceError names the instrument that fell short.
type InsufficientBalanceError struct {
	Instrument Instrument
	Required   money.Money
	Available  money.Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("payment: insufficient %s balance: need %d, have %d",
		e.Instrument, e.Required.Amount, e.Available.Amount)
}

// Election is the payer's choice of instruments.
type Election struct {
	UseTokens  bool
	UseCredits bool
}

// Balances are the payer's available funds, read before allocation. Debiting
// them transactionally is the caller's job.
type Balances struct {
	TokenBalance  money.Money
	CreditBalance money.Money
}

// CreditParityBps fixes credit<->fiat at 1:1 by policy.
const CreditParityBps = money.BpsScale

// Allocation splits a quote total across settlement instruments.
// TokenFiatEquivalent is the fiat value the token portion settles, so
// TokenFiatEquivalent + CreditPortion + FiatPortion always equals the quote's
// fiat total.
type Allocation struct {
	TokenPortion        money.Money
	FiatPortion         money.Money
	CreditPortion       money.Money
	TokenFiatEquivalent money.Money
}

// Allocate decides how a quote is paid. It is pure: either a fully consistent
// allocation comes back, or an error and no allocation at all.
//
// Tokens settle only the rental component, at its full token price. Credits
// settle the rental fiat component, partially if the balance is short; a
// short credit balance is not an error. Everything uncovered lands on fiat.
func Allocate(q pricing.Quote, e Election, b Balances) (Allocation, error) {
	if b.TokenBalance.IsNegative() || b.CreditBalance.IsNegative() {
		return Allocation{}, ErrNegativeBalance
	}

	alloc := Allocation{
		TokenPortion:        money.Zero(money.Token),
		CreditPortion:       money.Zero(money.Credit),
		TokenFiatEquivalent: money.Zero(money.Fiat),
	}

	rentalFiatDue := q.RentalFiat
	ancillaryFiat := q.AncillaryFiat()

	if e.UseTokens && !q.TotalToken.IsZero() {
		balance := b.TokenBalance
		if !balance.IsSet() {
			balance = money.Zero(money.Token)
		}
		if balance.Amount < q.TotalToken.Amount {
			return Allocation{}, &InsufficientBalanceError{
				Instrument: InstrumentToken,
				Required:   q.TotalToken,
				Available:  balance,
			}
		}
		alloc.TokenPortion = q.TotalToken
		alloc.TokenFiatEquivalent = q.RentalFiat
		rentalFiatDue = money.Zero(money.Fiat)
	}

	if e.UseCredits && rentalFiatDue.Amount > 0 {
		creditAsFiat := b.CreditBalance.Convert(money.Fiat, CreditParityBps)
		if !b.CreditBalance.IsSet() {
			creditAsFiat = money.Zero(money.Fiat)
		}
		covered, err := creditAsFiat.Min(rentalFiatDue)
		if err != nil {
			return Allocation{}, err
		}
		alloc.CreditPortion = covered.Convert(money.Credit, CreditParityBps)
		rentalFiatDue, err = rentalFiatDue.Sub(covered)
		if err != nil {
			return Allocation{}, err
		}
	}

	fiat, err := rentalFiatDue.Add(ancillaryFiat)
	if err != nil {
		return Allocation{}, err
	}
	alloc.FiatPortion = fiat

	if alloc.FiatPortion.IsNegative() || alloc.CreditPortion.IsNegative() || alloc.TokenPortion.IsNegative() {
		return Allocation{}, ErrNegativeBalance
	}
	return alloc, nil
}

// SettledFiat is the fiat value the allocation covers across all instruments.
func (a Allocation) SettledFiat() money.Money {
	total := a.TokenFiatEquivalent
	total, _ = total.Add(a.CreditPortion.Convert(money.Fiat, CreditParityBps))
	total, _ = total.Add(a.FiatPortion)
	return total
}
