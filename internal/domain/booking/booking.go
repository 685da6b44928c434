package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/payment"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidParty    = errors.New("booking: party size must be positive")
	ErrAccountRequired = errors.New("booking: account id required")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCancelled  Status = "CANCELLED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

// NotCancellableError signals a refund request against a booking whose state
// admits no cancellation.
type NotCancellableError struct {
	Status Status
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("booking: not cancellable in state %s", e.Status)
}

// Booking freezes one priced, allocated stay. The quote, allocation and
// cancellation policy are snapshots taken at checkout; later policy changes
// never touch an existing booking.
type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	AccountID string
	Category  listings.Category
	Range     daterange.DateRange
	Adults    int

	Quote      pricing.Quote
	Allocation payment.Allocation
	// PaidFiat is the fiat value actually settled, the base for refunds.
	PaidFiat money.Money
	Policy   *CancellationPolicy

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByAccount(ctx context.Context, accountID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	ListingID  listings.ListingID
	AccountID  string
	Category   listings.Category
	Range      daterange.DateRange
	Adults     int
	Quote      pricing.Quote
	Allocation payment.Allocation
	Policy     *CancellationPolicy
	CreatedAt  time.Time
}

// NewBooking freezes a quote and allocation onto a pending booking.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Adults <= 0 {
		return nil, ErrInvalidParty
	}
	if params.AccountID == "" {
		return nil, ErrAccountRequired
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		ListingID:  params.ListingID,
		AccountID:  params.AccountID,
		Category:   params.Category,
		Range:      params.Range,
		Adults:     params.Adults,
		Quote:      params.Quote,
		Allocation: params.Allocation,
		PaidFiat:   params.Allocation.SettledFiat(),
		Policy:     params.Policy,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		ListingID: b.ListingID,
		AccountID: b.AccountID,
		Range:     b.Range,
		Adults:    b.Adults,
		TotalFiat: b.Quote.TotalFiat,
		At:        now,
	})
	return b, nil
}

// Clone returns a copy detached from the stored aggregate, so callers can
// mutate and discard without touching persisted state. Pending events do not
// travel with the copy.
func (b *Booking) Clone() *Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	if b.Policy != nil {
		policy := *b.Policy
		cp.Policy = &policy
	}
	return &cp
}

// MarkPaid records that the caller settled the allocation.
func (b *Booking) MarkPaid(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusPaid
	b.UpdatedAt = now.UTC()
	b.Record(BookingPaid{BookingID: b.ID, Settled: b.PaidFiat, At: b.UpdatedAt})
	return nil
}

// Confirm locks in a paid booking.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPaid {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Cancellable states are pending, paid and confirmed; everything else is
// terminal or already on the stay path.
func (b *Booking) cancellable() bool {
	switch b.Status {
	case StatusPending, StatusPaid, StatusConfirmed:
		return true
	}
	return false
}

// Cancel transitions the booking to cancelled and returns the refundable
// amount from the frozen policy. The caller pays the refund out.
func (b *Booking) Cancel(reason string, now time.Time) (money.Money, int64, error) {
	if !b.cancellable() {
		return money.Money{}, 0, &NotCancellableError{Status: b.Status}
	}
	if b.Policy == nil {
		return money.Money{}, 0, ErrMissingPolicy
	}
	refund, appliedBps, err := b.Policy.RefundFor(b.PaidFiat, b.Range.Start, now.UTC())
	if err != nil {
		return money.Money{}, 0, err
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		BookingID:  b.ID,
		Refund:     refund,
		AppliedBps: appliedBps,
		Reason:     reason,
		At:         b.UpdatedAt,
	})
	return refund, appliedBps, nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusPaid && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(CheckInCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	b.Status = StatusCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(CheckOutCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}
