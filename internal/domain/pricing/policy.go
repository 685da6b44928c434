package pricing

import (
	"errors"
	"sort"
	"time"

	"staybook/internal/domain/shared/money"
)

var (
	ErrSeasonModifier   = errors.New("pricing: season modifier must be positive")
	ErrDiscountFraction = errors.New("pricing: discount fraction must be in [0,1)")
	ErrTierThreshold    = errors.New("pricing: tier threshold must be positive")
)

// SeasonPolicy marks one high-season window per year cycle. The window is
// inclusive on both months and may wrap the year boundary (e.g. Nov..Feb).
//
// StacksWithDurationDiscount controls whether the duration discount also
// applies inside the window. The historical behavior is that it does not;
// the flag makes that policy explicit and reversible.
type SeasonPolicy struct {
	HighSeasonStart            time.Month
	HighSeasonEnd              time.Month
	ModifierBps                int64
	StacksWithDurationDiscount bool
}

// InHighSeason reports whether the given month falls inside the window.
func (p SeasonPolicy) InHighSeason(m time.Month) bool {
	if p.HighSeasonStart == 0 || p.HighSeasonEnd == 0 {
		return false
	}
	if p.HighSeasonStart <= p.HighSeasonEnd {
		return m >= p.HighSeasonStart && m <= p.HighSeasonEnd
	}
	// wrapped window, e.g. November..February
	return m >= p.HighSeasonStart || m <= p.HighSeasonEnd
}

func (p SeasonPolicy) Validate() error {
	if p.HighSeasonStart != 0 || p.HighSeasonEnd != 0 {
		if p.ModifierBps <= 0 {
			return ErrSeasonModifier
		}
	}
	return nil
}

// DurationTier grants a discount once a stay reaches ThresholdNights.
type DurationTier struct {
	ThresholdNights int
	DiscountBps     int64
}

// DurationDiscountPolicy holds ordered tiers, evaluated highest threshold
// first. A stay matching no tier gets no discount.
type DurationDiscountPolicy struct {
	Tiers []DurationTier
}

// StandardDurationDiscounts is the shipped default: 10% from a week,
// 25% from a month.
func StandardDurationDiscounts() DurationDiscountPolicy {
	return DurationDiscountPolicy{Tiers: []DurationTier{
		{ThresholdNights: 28, DiscountBps: 2_500},
		{ThresholdNights: 7, DiscountBps: 1_000},
	}}
}

// DiscountBpsFor selects the discount for the given stay length.
func (p DurationDiscountPolicy) DiscountBpsFor(nights int) int64 {
	tiers := append([]DurationTier(nil), p.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].ThresholdNights > tiers[j].ThresholdNights })
	for _, tier := range tiers {
		if nights >= tier.ThresholdNights {
			return tier.DiscountBps
		}
	}
	return 0
}

func (p DurationDiscountPolicy) Validate() error {
	for _, tier := range p.Tiers {
		if tier.ThresholdNights <= 0 {
			return ErrTierThreshold
		}
		if tier.DiscountBps < 0 || tier.DiscountBps >= money.BpsScale {
			return ErrDiscountFraction
		}
	}
	return nil
}

// TicketOption is a purchasable event ticket variant. Options are identified
// by a stable ID; the display name is kept only for receipts.
type TicketOption struct {
	ID        string
	Name      string
	BasePrice money.Money
}

// TicketDiscount reduces the base price of exactly one ticket option.
type TicketDiscount struct {
	TicketOptionID string
	DiscountBps    int64
}

// FoodOption prices catering per adult per night.
type FoodOption struct {
	PricePerNightPerAdult money.Money
	Included              bool
}

// PolicySnapshot is the versioned pricing configuration passed explicitly
// into every pricing call, so a quote stays reproducible after the tables
// change.
type PolicySnapshot struct {
	Version       string
	Season        SeasonPolicy
	Duration      DurationDiscountPolicy
	UtilityFee    money.Money
	Food          FoodOption
	TicketOptions []TicketOption
	TicketOffer   *TicketDiscount
}

// TicketOptionByID finds a ticket option in the snapshot.
func (s PolicySnapshot) TicketOptionByID(id string) (TicketOption, bool) {
	for _, opt := range s.TicketOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return TicketOption{}, false
}

func (s PolicySnapshot) Validate() error {
	if err := s.Season.Validate(); err != nil {
		return err
	}
	return s.Duration.Validate()
}
