package cancel

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

var ErrUnitOfWorkRequired = errors.New("cancel: unit of work required")

// CancelBookingCommand cancels a booking and computes its refund from the
// policy frozen at checkout.
type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID    string `json:"booking_id"`
	RefundFiat   int64  `json:"refund_fiat"`
	AppliedBps   int64  `json:"applied_bps"`
	PaidFiat     int64  `json:"paid_fiat"`
	CancelledAtU int64  `json:"cancelled_at_unix"`
}

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	now := h.now()
	refund, appliedBps, err := bk.Cancel(cmd.Reason, now)
	if err != nil {
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

	return &CancelBookingResult{
		BookingID:    string(bk.ID),
		RefundFiat:   refund.Amount,
		AppliedBps:   appliedBps,
		PaidFiat:     bk.PaidFiat.Amount,
		CancelledAtU: now.Unix(),
	}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
