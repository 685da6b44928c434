package bookings

import (
	"context"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const listBookingsKey = "booking.list_by_account"

type ListBookingsQuery struct {
	AccountID string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

type ListBookingsResult struct {
	Bookings []BookingView `json:"bookings"`
}

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (ListBookingsResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return ListBookingsResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Bookings().ListByAccount(ctx, q.AccountID)
	if err != nil {
		return ListBookingsResult{}, err
	}

	out := ListBookingsResult{Bookings: make([]BookingView, 0, len(items))}
	for _, bk := range items {
		out.Bookings = append(out.Bookings, viewOf(bk))
	}
	return out, nil
}

func viewOf(bk *domainbooking.Booking) BookingView {
	return BookingView{
		ID:            string(bk.ID),
		ListingID:     string(bk.ListingID),
		AccountID:     bk.AccountID,
		Status:        string(bk.Status),
		Nights:        bk.Quote.DurationNights,
		TotalFiat:     bk.Quote.TotalFiat.Amount,
		TotalToken:    bk.Quote.TotalToken.Amount,
		PaidFiat:      bk.PaidFiat.Amount,
		TokenPortion:  bk.Allocation.TokenPortion.Amount,
		CreditPortion: bk.Allocation.CreditPortion.Amount,
		FiatPortion:   bk.Allocation.FiatPortion.Amount,
		PolicyVersion: bk.Quote.PolicyVersion,
	}
}

var _ queries.Handler[ListBookingsQuery, ListBookingsResult] = (*ListBookingsHandler)(nil)
