package checkout

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayment "staybook/internal/domain/payment"
	domainpricing "staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

const checkoutKey = "booking.checkout"

var (
	ErrUnitOfWorkRequired = errors.New("checkout: unit of work required")
	ErrListingUnavailable = errors.New("checkout: listing no longer available for the requested range")
)

// CheckoutCommand prices, allocates and persists one booking atomically.
type CheckoutCommand struct {
	CommandID      string
	AccountID      string
	ListingID      string
	Start          time.Time
	End            time.Time
	Adults         int
	Category       string
	Residence      bool
	UseTokens      bool
	UseCredits     bool
	TicketOptionID string
	TicketQuantity int
	PolicyVersion  string

	IdempotencyKeyV string
}

func (c CheckoutCommand) Key() string { return checkoutKey }

func (c CheckoutCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CheckoutCommand) ResultPrototype() any { return &CheckoutResult{} }

type CheckoutResult struct {
	BookingID     string `json:"booking_id"`
	TotalFiat     int64  `json:"total_fiat"`
	TokenPortion  int64  `json:"token_portion"`
	CreditPortion int64  `json:"credit_portion"`
	FiatPortion   int64  `json:"fiat_portion"`
	PolicyVersion string `json:"policy_version"`
}

type CheckoutHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

// Handle runs the whole checkout inside one unit of work: the availability
// re-check, the balance debits, the reservation write and the booking save
// either all commit or none do.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		if injector, ok := unit.(interface {
			InjectContext(context.Context) context.Context
		}); ok {
			ctx = injector.InjectContext(ctx)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	reserved, err := unit.Reservations().ForListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	free, err := domainavailability.Resolve(domainavailability.Request{
		Range:     dr,
		PartySize: cmd.Adults,
		Category:  domainlistings.Category(cmd.Category),
	}, []*domainlistings.Listing{listing}, reserved)
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return nil, ErrListingUnavailable
	}

	bundle, err := unit.Policies().Snapshot(ctx, cmd.PolicyVersion)
	if err != nil {
		return nil, err
	}

	var ticket *domainpricing.TicketSelection
	if cmd.TicketOptionID != "" {
		ticket = &domainpricing.TicketSelection{OptionID: cmd.TicketOptionID, Quantity: cmd.TicketQuantity}
	}
	priced, err := domainpricing.Price(domainpricing.QuoteInput{
		Listing:   listing,
		Range:     dr,
		Adults:    cmd.Adults,
		Residence: cmd.Residence,
		Ticket:    ticket,
		Policies:  bundle.Pricing,
	})
	if err != nil {
		return nil, err
	}

	balances, err := unit.Balances().Balances(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	alloc, err := domainpayment.Allocate(priced, domainpayment.Election{
		UseTokens:  cmd.UseTokens,
		UseCredits: cmd.UseCredits,
	}, balances)
	if err != nil {
		return nil, err
	}

	if !alloc.TokenPortion.IsZero() {
		if err := unit.Balances().Debit(ctx, cmd.AccountID, alloc.TokenPortion); err != nil {
			return nil, err
		}
	}
	if !alloc.CreditPortion.IsZero() {
		if err := unit.Balances().Debit(ctx, cmd.AccountID, alloc.CreditPortion); err != nil {
			return nil, err
		}
	}

	now := h.now()
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		ListingID:  listing.ID,
		AccountID:  cmd.AccountID,
		Category:   domainlistings.Category(cmd.Category),
		Range:      dr,
		Adults:     cmd.Adults,
		Quote:      priced,
		Allocation: alloc,
		Policy:     bundle.Cancellation,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := bk.MarkPaid(now); err != nil {
		return nil, err
	}

	if err := unit.Reservations().Add(ctx, domainavailability.Reservation{ListingID: listing.ID, Range: dr}); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CheckoutResult{
		BookingID:     string(bk.ID),
		TotalFiat:     priced.TotalFiat.Amount,
		TokenPortion:  alloc.TokenPortion.Amount,
		CreditPortion: alloc.CreditPortion.Amount,
		FiatPortion:   alloc.FiatPortion.Amount,
		PolicyVersion: bundle.Version,
	}, nil
}

func (h *CheckoutHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CheckoutHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CheckoutCommand, *CheckoutResult] = (*CheckoutHandler)(nil)
var _ middleware.IdempotentCommand = (*CheckoutCommand)(nil)
