package availability

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

const resolveKey = "availability.resolve"

type ResolveQuery struct {
	Start     time.Time
	End       time.Time
	PartySize int
	Category  string
}

func (q ResolveQuery) Key() string { return resolveKey }

// ListingSummary is what the search surface needs per bookable unit.
type ListingSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Capacity        int    `json:"capacity"`
	NightlyRateFiat int64  `json:"nightly_rate_fiat"`
}

type ResolveResult struct {
	Listings []ListingSummary `json:"listings"`
}

type ResolveHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ResolveHandler) Handle(ctx context.Context, q ResolveQuery) (ResolveResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return ResolveResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.Start, q.End)
	if err != nil {
		return ResolveResult{}, domainavailability.ErrInvalidRange
	}

	candidates, err := unit.Listings().All(ctx)
	if err != nil {
		return ResolveResult{}, err
	}
	reserved, err := unit.Reservations().InRange(ctx, dr)
	if err != nil {
		return ResolveResult{}, err
	}

	matched, err := domainavailability.Resolve(domainavailability.Request{
		Range:     dr,
		PartySize: q.PartySize,
		Category:  domainlistings.Category(q.Category),
	}, candidates, reserved)
	if err != nil {
		return ResolveResult{}, err
	}

	out := ResolveResult{Listings: make([]ListingSummary, 0, len(matched))}
	for _, listing := range matched {
		out.Listings = append(out.Listings, ListingSummary{
			ID:              string(listing.ID),
			Title:           listing.Title,
			Capacity:        listing.Capacity,
			NightlyRateFiat: listing.BaseRate.Amount,
		})
	}
	return out, nil
}

var _ queries.Handler[ResolveQuery, ResolveResult] = (*ResolveHandler)(nil)
