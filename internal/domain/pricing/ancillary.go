package pricing

import "staybook/internal/domain/shared/money"

// TicketSelection names the ticket option a guest picked and how many seats.
type TicketSelection struct {
	OptionID string
	Quantity int
}

// AncillaryInput collects the stay-level add-on charges. Every component is
// optional: an unset Money or missing selection prices at zero, which is a
// valid booking shape rather than an error.
type AncillaryInput struct {
	UtilityFee     money.Money
	Food           FoodOption
	Adults         int
	DurationNights int
	// Residence stays never pay for food, whatever the included flag says.
	Residence bool
	Ticket    *TicketSelection
	Options   []TicketOption
	Offer     *TicketDiscount
}

// AncillaryResult is the add-on component of a quote, all fiat.
type AncillaryResult struct {
	UtilityFiat money.Money
	FoodFiat    money.Money
	EventFiat   money.Money
}

// AggregateAncillary combines utility fee, food and event ticket costs.
func AggregateAncillary(in AncillaryInput) AncillaryResult {
	out := AncillaryResult{
		UtilityFiat: money.Zero(money.Fiat),
		FoodFiat:    money.Zero(money.Fiat),
		EventFiat:   money.Zero(money.Fiat),
	}

	if in.UtilityFee.IsSet() {
		out.UtilityFiat = in.UtilityFee
	}

	if in.Food.Included && !in.Residence && in.Food.PricePerNightPerAdult.IsSet() {
		out.FoodFiat = in.Food.PricePerNightPerAdult.
			Multiply(int64(in.Adults)).
			Multiply(int64(in.DurationNights))
	}

	if in.Ticket != nil && in.Ticket.Quantity > 0 {
		out.EventFiat = priceTicket(*in.Ticket, in.Options, in.Offer)
	}

	return out
}

// priceTicket applies the offer only when it names the selected option; an
// offer for another option silently prices at base.
func priceTicket(sel TicketSelection, options []TicketOption, offer *TicketDiscount) money.Money {
	for _, opt := range options {
		if opt.ID != sel.OptionID {
			continue
		}
		unit := opt.BasePrice
		if offer != nil && offer.TicketOptionID == opt.ID {
			unit = unit.MulBps(money.BpsScale - offer.DiscountBps)
		}
		return unit.Multiply(int64(sel.Quantity))
	}
	// unknown option: no ticket line, zero cost
	return money.Zero(money.Fiat)
}
