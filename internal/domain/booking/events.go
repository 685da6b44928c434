package booking

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID
	ListingID listings.ListingID
	AccountID string
	Range     daterange.DateRange
	Adults    int
	TotalFiat money.Money
	At        time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingPaid struct {
	BookingID BookingID
	Settled   money.Money
	At        time.Time
}

func (e BookingPaid) EventName() string     { return "booking.paid" }
func (e BookingPaid) AggregateID() string   { return string(e.BookingID) }
func (e BookingPaid) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID  BookingID
	Refund     money.Money
	AppliedBps int64
	Reason     string
	At         time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type CheckInCompleted struct {
	BookingID BookingID
	At        time.Time
}

func (e CheckInCompleted) EventName() string     { return "booking.checkin_completed" }
func (e CheckInCompleted) AggregateID() string   { return string(e.BookingID) }
func (e CheckInCompleted) OccurredAt() time.Time { return e.At }

type CheckOutCompleted struct {
	BookingID BookingID
	At        time.Time
}

func (e CheckOutCompleted) EventName() string     { return "booking.checkout_completed" }
func (e CheckOutCompleted) AggregateID() string   { return string(e.BookingID) }
func (e CheckOutCompleted) OccurredAt() time.Time { return e.At }
