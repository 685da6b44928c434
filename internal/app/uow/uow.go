package uow

import (
	"context"

	"staybook/internal/app/policies"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// availability check, balance debit and booking save of one checkout must all
// ride the same unit, or two concurrent bookers can double-book a listing.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Reservations() domainavailability.Repository
	Bookings() domainbooking.Repository
	Balances() policies.BalancePort
	Policies() policies.PolicyPort

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
