package listings

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/domain/shared/money"
)

var (
	ErrIDRequired     = errors.New("listings: id is required")
	ErrTitleRequired  = errors.New("listings: title is required")
	ErrCapacity       = errors.New("listings: capacity must be at least 1")
	ErrBaseRate       = errors.New("listings: base rate must be non-negative fiat")
	ErrTokenRate      = errors.New("listings: token rate must be non-negative token")
	ErrInvalidTag     = errors.New("listings: unknown availability tag")
	ErrListingMissing = errors.New("listings: not found")
)

type ListingID string

// Category restricts which booking kinds may reserve a listing.
type Category string

const (
	CategoryGuest     Category = "guest"
	CategoryEvent     Category = "event"
	CategoryVolunteer Category = "volunteer"
	CategoryTeam      Category = "team"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGuest, CategoryEvent, CategoryVolunteer, CategoryTeam:
		return true
	}
	return false
}

// Listing is immutable reference data owned by the inventory collaborator.
// The engine only reads it; rate changes arrive as a fresh snapshot.
type Listing struct {
	ID               ListingID
	Title            string
	BaseRate         money.Money
	TokenRate        money.Money
	AvailabilityTags []Category
	Capacity         int
}

// HasTag reports whether the listing carries the given availability tag.
func (l *Listing) HasTag(c Category) bool {
	for _, tag := range l.AvailabilityTags {
		if tag == c {
			return true
		}
	}
	return false
}

type CreateListingParams struct {
	ID               ListingID
	Title            string
	BaseRate         money.Money
	TokenRate        money.Money
	AvailabilityTags []Category
	Capacity         int
}

// NewListing validates reference data handed in from the inventory service.
// TokenRate may be left unset for listings not bookable with tokens.
func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	if params.BaseRate.Currency != money.Fiat || params.BaseRate.IsNegative() {
		return nil, ErrBaseRate
	}
	if params.TokenRate.IsSet() && (params.TokenRate.Currency != money.Token || params.TokenRate.IsNegative()) {
		return nil, ErrTokenRate
	}
	for _, tag := range params.AvailabilityTags {
		if !tag.Valid() {
			return nil, ErrInvalidTag
		}
	}
	return &Listing{
		ID:               params.ID,
		Title:            strings.TrimSpace(params.Title),
		BaseRate:         params.BaseRate,
		TokenRate:        params.TokenRate,
		AvailabilityTags: append([]Category(nil), params.AvailabilityTags...),
		Capacity:         params.Capacity,
	}, nil
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	All(ctx context.Context) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}
