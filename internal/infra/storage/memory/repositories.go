package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

// ListingRepository is an in-memory implementation backed by a map; insertion
// order is preserved so availability results stay stable.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
	order []domainlistings.ListingID
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or ErrListingMissing.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingMissing
	}
	return listing, nil
}

// All returns every listing in insertion order.
func (r *ListingRepository) All(ctx context.Context) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[listing.ID]; !exists {
		r.order = append(r.order, listing.ID)
	}
	r.items[listing.ID] = listing
	return nil
}

var _ domainlistings.Repository = (*ListingRepository)(nil)

// ReservationRepository keeps confirmed holds per listing.
type ReservationRepository struct {
	mu    sync.RWMutex
	items []domainavailability.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

// InRange returns reservations overlapping the given range.
func (r *ReservationRepository) InRange(ctx context.Context, rng daterange.DateRange) ([]domainavailability.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainavailability.Reservation, 0)
	for _, res := range r.items {
		if rng.Overlaps(res.Range) {
			out = append(out, res)
		}
	}
	return out, nil
}

// ForListing returns every reservation held against a listing.
func (r *ReservationRepository) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainavailability.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainavailability.Reservation, 0)
	for _, res := range r.items {
		if res.ListingID == id {
			out = append(out, res)
		}
	}
	return out, nil
}

// Add stores a new reservation row.
func (r *ReservationRepository) Add(ctx context.Context, res domainavailability.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, res)
	return nil
}

var _ domainavailability.Repository = (*ReservationRepository)(nil)

// BookingRepository stores booking aggregates in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID returns a detached copy; callers mutate it freely and the change only
// lands when Save runs.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bk, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return bk.Clone(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) ListByAccount(ctx context.Context, accountID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, bk := range r.items {
		if bk.AccountID == accountID {
			out = append(out, bk.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
