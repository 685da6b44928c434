package pricing

import (
	"errors"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidRange      = errors.New("pricing: stay must cover at least one night")
	ErrMissingRatePolicy = errors.New("pricing: no base rate configured for listing")
)

// RateInput carries everything the rental calculation needs. TokenRate may be
// unset when the listing cannot be settled in tokens.
type RateInput struct {
	BaseRate  money.Money
	TokenRate money.Money
	Range     daterange.DateRange
	Season    SeasonPolicy
	Duration  DurationDiscountPolicy
}

// RateResult is the rental component of a quote.
type RateResult struct {
	RentalFiat               money.Money
	RentalToken              money.Money
	DurationNights           int
	AppliedDiscountBps       int64
	AppliedSeasonModifierBps int64
}

// CalculateRate prices the accommodation charge for a stay.
//
// The season modifier keys off the month of the start date. Inside high
// season the modifier scales the raw nightly rate and the duration discount
// is withheld unless the policy stacks them; outside high season only the
// duration discount applies.
func CalculateRate(in RateInput) (RateResult, error) {
	nights := in.Range.Nights()
	if nights <= 0 {
		return RateResult{}, ErrInvalidRange
	}
	if !in.BaseRate.IsSet() || in.BaseRate.Currency != money.Fiat {
		return RateResult{}, ErrMissingRatePolicy
	}

	modifierBps := money.BpsScale
	discountBps := int64(0)
	if in.Season.InHighSeason(in.Range.Start.Month()) {
		modifierBps = in.Season.ModifierBps
		if in.Season.StacksWithDurationDiscount {
			discountBps = in.Duration.DiscountBpsFor(nights)
		}
	} else {
		discountBps = in.Duration.DiscountBpsFor(nights)
	}

	rentalFiat := applyRate(in.BaseRate, nights, modifierBps, discountBps)
	rentalToken := money.Zero(money.Token)
	if in.TokenRate.IsSet() {
		rentalToken = applyRate(in.TokenRate, nights, modifierBps, discountBps)
	}

	return RateResult{
		RentalFiat:               rentalFiat,
		RentalToken:              rentalToken,
		DurationNights:           nights,
		AppliedDiscountBps:       discountBps,
		AppliedSeasonModifierBps: modifierBps,
	}, nil
}

func applyRate(nightly money.Money, nights int, modifierBps, discountBps int64) money.Money {
	total := nightly.Multiply(int64(nights))
	if modifierBps != money.BpsScale {
		total = total.MulBps(modifierBps)
	}
	if discountBps != 0 {
		total = total.MulBps(money.BpsScale - discountBps)
	}
	return total
}
