package availability

import (
	"context"
	"errors"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrInvalidRange     = errors.New("availability: requested range must cover at least one night")
	ErrInvalidPartySize = errors.New("availability: party size must be at least 1")
	ErrInvalidCategory  = errors.New("availability: unknown booking category")
)

// Reservation is an existing, conflicting-capable hold on a listing.
type Reservation struct {
	ListingID listings.ListingID
	Range     daterange.DateRange
}

// Repository provides reservation rows and accepts new ones. The caller must
// wrap Resolve + Add in one transaction; the resolver itself only reads.
type Repository interface {
	InRange(ctx context.Context, rng daterange.DateRange) ([]Reservation, error)
	ForListing(ctx context.Context, id listings.ListingID) ([]Reservation, error)
	Add(ctx context.Context, res Reservation) error
}

// Request is one availability question.
type Request struct {
	Range     daterange.DateRange
	PartySize int
	Category  listings.Category
}

// Resolve filters candidates down to listings bookable for the request.
// Result order follows input order; an empty result means no availability and
// is not an error. Team requests are matched purely on the team tag, which
// the per-category filter below already expresses; capacity and conflict
// checks apply to every kind.
func Resolve(req Request, candidates []*listings.Listing, reserved []Reservation) ([]*listings.Listing, error) {
	if req.Range.Nights() <= 0 {
		return nil, ErrInvalidRange
	}
	if req.PartySize < 1 {
		return nil, ErrInvalidPartySize
	}
	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	out := make([]*listings.Listing, 0, len(candidates))
	for _, listing := range candidates {
		if listing == nil {
			continue
		}
		if !listing.HasTag(req.Category) {
			continue
		}
		if listing.Capacity < req.PartySize {
			continue
		}
		if hasConflict(listing.ID, req.Range, reserved) {
			continue
		}
		out = append(out, listing)
	}
	return out, nil
}

func hasConflict(id listings.ListingID, rng daterange.DateRange, reserved []Reservation) bool {
	for _, res := range reserved {
		if res.ListingID != id {
			continue
		}
		if rng.Overlaps(res.Range) {
			return true
		}
	}
	return false
}
