package quote

import (
	"context"
	"time"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

const priceStayKey = "quote.price_stay"

// PriceStayQuery asks for a priced quote against one listing and an explicit
// policy snapshot version (empty means latest).
type PriceStayQuery struct {
	ListingID      string
	Start          time.Time
	End            time.Time
	Adults         int
	Residence      bool
	TicketOptionID string
	TicketQuantity int
	PolicyVersion  string
}

func (q PriceStayQuery) Key() string { return priceStayKey }

type PriceStayResult struct {
	Quote         domainpricing.Quote `json:"quote"`
	PolicyVersion string              `json:"policy_version"`
}

type PriceStayHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *PriceStayHandler) Handle(ctx context.Context, q PriceStayQuery) (PriceStayResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return PriceStayResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.Start, q.End)
	if err != nil {
		return PriceStayResult{}, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return PriceStayResult{}, err
	}

	bundle, err := unit.Policies().Snapshot(ctx, q.PolicyVersion)
	if err != nil {
		return PriceStayResult{}, err
	}

	var ticket *domainpricing.TicketSelection
	if q.TicketOptionID != "" {
		ticket = &domainpricing.TicketSelection{OptionID: q.TicketOptionID, Quantity: q.TicketQuantity}
	}

	priced, err := domainpricing.Price(domainpricing.QuoteInput{
		Listing:   listing,
		Range:     dr,
		Adults:    q.Adults,
		Residence: q.Residence,
		Ticket:    ticket,
		Policies:  bundle.Pricing,
	})
	if err != nil {
		return PriceStayResult{}, err
	}

	return PriceStayResult{Quote: priced, PolicyVersion: bundle.Version}, nil
}

var _ queries.Handler[PriceStayQuery, PriceStayResult] = (*PriceStayHandler)(nil)
