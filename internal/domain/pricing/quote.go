package pricing

import (
	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// Quote is the priced result of one pricing request. It is computed fresh per
// request and never mutated; re-pricing produces a new value.
type Quote struct {
	RentalFiat  money.Money
	RentalToken money.Money
	UtilityFiat money.Money
	FoodFiat    money.Money
	EventFiat   money.Money
	TotalFiat   money.Money
	TotalToken  money.Money

	DurationNights           int
	AppliedDiscountBps       int64
	AppliedSeasonModifierBps int64
	PolicyVersion            string
}

// AncillaryFiat is the non-rental share of the fiat total.
func (q Quote) AncillaryFiat() money.Money {
	out, _ := q.TotalFiat.Sub(q.RentalFiat)
	return out
}

// QuoteInput describes one candidate booking against a policy snapshot.
type QuoteInput struct {
	Listing   *listings.Listing
	Range     daterange.DateRange
	Adults    int
	Residence bool
	Ticket    *TicketSelection
	Policies  PolicySnapshot
}

// Price runs the rate calculator and the ancillary aggregator and folds the
// results into an immutable Quote. Identical inputs always produce identical
// quotes.
func Price(in QuoteInput) (Quote, error) {
	if in.Listing == nil {
		return Quote{}, ErrMissingRatePolicy
	}

	rate, err := CalculateRate(RateInput{
		BaseRate:  in.Listing.BaseRate,
		TokenRate: in.Listing.TokenRate,
		Range:     in.Range,
		Season:    in.Policies.Season,
		Duration:  in.Policies.Duration,
	})
	if err != nil {
		return Quote{}, err
	}

	extras := AggregateAncillary(AncillaryInput{
		UtilityFee:     in.Policies.UtilityFee,
		Food:           in.Policies.Food,
		Adults:         in.Adults,
		DurationNights: rate.DurationNights,
		Residence:      in.Residence,
		Ticket:         in.Ticket,
		Options:        in.Policies.TicketOptions,
		Offer:          in.Policies.TicketOffer,
	})

	totalFiat := rate.RentalFiat
	for _, part := range []money.Money{extras.UtilityFiat, extras.FoodFiat, extras.EventFiat} {
		totalFiat, err = totalFiat.Add(part)
		if err != nil {
			return Quote{}, err
		}
	}

	return Quote{
		RentalFiat:               rate.RentalFiat,
		RentalToken:              rate.RentalToken,
		UtilityFiat:              extras.UtilityFiat,
		FoodFiat:                 extras.FoodFiat,
		EventFiat:                extras.EventFiat,
		TotalFiat:                totalFiat,
		TotalToken:               rate.RentalToken,
		DurationNights:           rate.DurationNights,
		AppliedDiscountBps:       rate.AppliedDiscountBps,
		AppliedSeasonModifierBps: rate.AppliedSeasonModifierBps,
		PolicyVersion:            in.Policies.Version,
	}, nil
}
