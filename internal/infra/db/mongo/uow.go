package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
// Listings, balances and policies may still be in-memory ports; only the
// repositories that write per-checkout state need the session.
type Factory struct {
	DB *mongo.Database

	ListingsRepo     domainlistings.Repository
	ReservationsRepo domainavailability.Repository
	BookingsRepo     domainbooking.Repository
	BalanceStore     policies.BalancePort
	PolicyStore      policies.PolicyPort
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:      session,
		listings:     f.ListingsRepo,
		reservations: f.ReservationsRepo,
		bookings:     f.BookingsRepo,
		balances:     f.BalanceStore,
		policies:     f.PolicyStore,
	}, nil
}

type Unit struct {
	session mongo.Session

	listings     domainlistings.Repository
	reservations domainavailability.Repository
	bookings     domainbooking.Repository
	balances     policies.BalancePort
	policies     policies.PolicyPort
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Reservations() domainavailability.Repository {
	return u.reservations
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Balances() policies.BalancePort {
	return u.balances
}

func (u *Unit) Policies() policies.PolicyPort {
	return u.policies
}

// InjectContext binds the session to the context so every repository call
// made through this unit joins the open transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

var _ uow.UoWFactory = Factory{}
