package bookings

import (
	"context"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type BookingView struct {
	ID            string `json:"id"`
	ListingID     string `json:"listing_id"`
	AccountID     string `json:"account_id"`
	Status        string `json:"status"`
	Nights        int    `json:"nights"`
	TotalFiat     int64  `json:"total_fiat"`
	TotalToken    int64  `json:"total_token"`
	PaidFiat      int64  `json:"paid_fiat"`
	TokenPortion  int64  `json:"token_portion"`
	CreditPortion int64  `json:"credit_portion"`
	FiatPortion   int64  `json:"fiat_portion"`
	PolicyVersion string `json:"policy_version"`
}

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (BookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return BookingView{}, err
	}

	return viewOf(bk), nil
}

var _ queries.Handler[GetBookingQuery, BookingView] = (*GetBookingHandler)(nil)
