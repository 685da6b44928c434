package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/payment"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// FactoryDeps names the shared stores a Factory coordinates.
type FactoryDeps struct {
	Listings     domainlistings.Repository
	Reservations domainavailability.Repository
	Bookings     domainbooking.Repository
	Balances     policies.BalancePort
	Policies     policies.PolicyPort
}

// Factory hands out units that stage writes and apply them on Commit. A
// write unit holds the gate from Begin until Commit or Rollback, so commands
// against the shared stores run one at a time: the availability check and the
// reservation write of one checkout cannot interleave with another's.
type Factory struct {
	deps FactoryDeps
	gate sync.RWMutex
}

func NewFactory(deps FactoryDeps) *Factory {
	return &Factory{deps: deps}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	d := f.deps
	if d.Listings == nil || d.Reservations == nil || d.Bookings == nil ||
		d.Balances == nil || d.Policies == nil {
		return nil, ErrFactoryMisconfigured
	}
	if opts.ReadOnly {
		f.gate.RLock()
	} else {
		f.gate.Lock()
	}
	return &Unit{
		factory:      f,
		readOnly:     opts.ReadOnly,
		listings:     d.Listings,
		policies:     d.Policies,
		reservations: &stagedReservations{base: d.Reservations},
		bookings:     &stagedBookings{base: d.Bookings},
		balances:     &stagedBalances{base: d.Balances},
	}, nil
}

var _ uow.UoWFactory = (*Factory)(nil)

// Unit buffers reservation, booking and balance writes until Commit; Rollback
// drops them and the shared stores never see the attempt. Commit and Rollback
// release the factory gate exactly once.
type Unit struct {
	factory  *Factory
	readOnly bool
	done     bool

	listings     domainlistings.Repository
	policies     policies.PolicyPort
	reservations *stagedReservations
	bookings     *stagedBookings
	balances     *stagedBalances
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

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.release()
	if err := u.balances.apply(ctx); err != nil {
		return err
	}
	if err := u.reservations.apply(ctx); err != nil {
		return err
	}
	return u.bookings.apply(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.release()
	return nil
}

func (u *Unit) release() {
	if u.readOnly {
		u.factory.gate.RUnlock()
	} else {
		u.factory.gate.Unlock()
	}
}

// stagedReservations layers pending rows over the shared store so the unit
// reads its own writes.
type stagedReservations struct {
	base   domainavailability.Repository
	staged []domainavailability.Reservation
}

func (s *stagedReservations) InRange(ctx context.Context, rng daterange.DateRange) ([]domainavailability.Reservation, error) {
	out, err := s.base.InRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	for _, res := range s.staged {
		if rng.Overlaps(res.Range) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *stagedReservations) ForListing(ctx context.Context, id domainlistings.ListingID) ([]domainavailability.Reservation, error) {
	out, err := s.base.ForListing(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, res := range s.staged {
		if res.ListingID == id {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *stagedReservations) Add(ctx context.Context, res domainavailability.Reservation) error {
	s.staged = append(s.staged, res)
	return nil
}

func (s *stagedReservations) apply(ctx context.Context) error {
	for _, res := range s.staged {
		if err := s.base.Add(ctx, res); err != nil {
			return err
		}
	}
	s.staged = nil
	return nil
}

var _ domainavailability.Repository = (*stagedReservations)(nil)

type stagedBookings struct {
	base   domainbooking.Repository
	staged map[domainbooking.BookingID]*domainbooking.Booking
	order  []domainbooking.BookingID
}

func (s *stagedBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if bk, ok := s.staged[id]; ok {
		return bk, nil
	}
	return s.base.ByID(ctx, id)
}

func (s *stagedBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	if s.staged == nil {
		s.staged = make(map[domainbooking.BookingID]*domainbooking.Booking)
	}
	if _, ok := s.staged[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.staged[b.ID] = b
	return nil
}

func (s *stagedBookings) ListByAccount(ctx context.Context, accountID string) ([]*domainbooking.Booking, error) {
	stored, err := s.base.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(stored)+len(s.order))
	for _, bk := range stored {
		if _, ok := s.staged[bk.ID]; ok {
			continue
		}
		out = append(out, bk)
	}
	for _, id := range s.order {
		if bk := s.staged[id]; bk.AccountID == accountID {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *stagedBookings) apply(ctx context.Context) error {
	for _, id := range s.order {
		if err := s.base.Save(ctx, s.staged[id]); err != nil {
			return err
		}
	}
	s.staged = nil
	s.order = nil
	return nil
}

var _ domainbooking.Repository = (*stagedBookings)(nil)

// stagedBalances validates debits against the effective balance (base minus
// whatever this unit already debited) and applies them on commit.
type stagedBalances struct {
	base   policies.BalancePort
	debits map[string][]money.Money
	order  []string
}

func (s *stagedBalances) Balances(ctx context.Context, accountID string) (payment.Balances, error) {
	b, err := s.base.Balances(ctx, accountID)
	if err != nil {
		return payment.Balances{}, err
	}
	for _, d := range s.debits[accountID] {
		switch d.Currency {
		case money.Token:
			b.TokenBalance, err = b.TokenBalance.Sub(d)
		case money.Credit:
			b.CreditBalance, err = b.CreditBalance.Sub(d)
		}
		if err != nil {
			return payment.Balances{}, err
		}
	}
	return b, nil
}

func (s *stagedBalances) Debit(ctx context.Context, accountID string, amount money.Money) error {
	if amount.IsZero() {
		return nil
	}
	b, err := s.Balances(ctx, accountID)
	if err != nil {
		return err
	}
	switch amount.Currency {
	case money.Token:
		next, err := b.TokenBalance.Sub(amount)
		if err != nil {
			return err
		}
		if next.IsNegative() {
			return fmt.Errorf("memory: token balance overdraft for account %s", accountID)
		}
	case money.Credit:
		next, err := b.CreditBalance.Sub(amount)
		if err != nil {
			return err
		}
		if next.IsNegative() {
			return fmt.Errorf("memory: credit balance overdraft for account %s", accountID)
		}
	default:
		return ErrUnsupportedInstrument
	}
	if s.debits == nil {
		s.debits = make(map[string][]money.Money)
	}
	if _, ok := s.debits[accountID]; !ok {
		s.order = append(s.order, accountID)
	}
	s.debits[accountID] = append(s.debits[accountID], amount)
	return nil
}

func (s *stagedBalances) apply(ctx context.Context) error {
	for _, account := range s.order {
		for _, amount := range s.debits[account] {
			if err := s.base.Debit(ctx, account, amount); err != nil {
				return err
			}
		}
	}
	s.debits = nil
	s.order = nil
	return nil
}

var _ policies.BalancePort = (*stagedBalances)(nil)
