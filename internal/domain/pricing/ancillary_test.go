package pricing

import (
	"testing"

	"staybook/internal/domain/shared/money"
)

func testOptions() []TicketOption {
	return []TicketOption{
		{ID: "opt-day", Name: "Day pass", BasePrice: money.Must(200, money.Fiat)},
		{ID: "opt-full", Name: "Full festival", BasePrice: money.Must(800, money.Fiat)},
	}
}

func TestAggregateAncillaryFood(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{
		Food:           FoodOption{PricePerNightPerAdult: money.Must(15, money.Fiat), Included: true},
		Adults:         2,
		DurationNights: 4,
	})
	if res.FoodFiat.Amount != 120 {
		t.Fatalf("food = %d, want 120", res.FoodFiat.Amount)
	}
}

func TestAggregateAncillaryResidenceSkipsFood(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{
		Food:           FoodOption{PricePerNightPerAdult: money.Must(15, money.Fiat), Included: true},
		Adults:         2,
		DurationNights: 4,
		Residence:      true,
	})
	if !res.FoodFiat.IsZero() {
		t.Fatalf("residence stay priced food at %d", res.FoodFiat.Amount)
	}
}

func TestAggregateAncillaryFoodNotIncluded(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{
		Food:           FoodOption{PricePerNightPerAdult: money.Must(15, money.Fiat)},
		Adults:         2,
		DurationNights: 4,
	})
	if !res.FoodFiat.IsZero() {
		t.Fatalf("excluded food priced at %d", res.FoodFiat.Amount)
	}
}

func TestAggregateAncillaryUtilityFee(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{UtilityFee: money.Must(500, money.Fiat)})
	if res.UtilityFiat.Amount != 500 {
		t.Fatalf("utility = %d, want 500", res.UtilityFiat.Amount)
	}
}

func TestPriceTicketOfferOnMatchingOption(t *testing.T) {
	t.Parallel()
	offer := &TicketDiscount{TicketOptionID: "opt-day", DiscountBps: 2_500}
	res := AggregateAncillary(AncillaryInput{
		Ticket:  &TicketSelection{OptionID: "opt-day", Quantity: 2},
		Options: testOptions(),
		Offer:   offer,
	})
	// 200 * 0.75 * 2
	if res.EventFiat.Amount != 300 {
		t.Fatalf("event = %d, want 300", res.EventFiat.Amount)
	}
}

func TestPriceTicketOfferIgnoredForOtherOption(t *testing.T) {
	t.Parallel()
	offer := &TicketDiscount{TicketOptionID: "opt-day", DiscountBps: 2_500}
	res := AggregateAncillary(AncillaryInput{
		Ticket:  &TicketSelection{OptionID: "opt-full", Quantity: 1},
		Options: testOptions(),
		Offer:   offer,
	})
	if res.EventFiat.Amount != 800 {
		t.Fatalf("event = %d, want 800", res.EventFiat.Amount)
	}
}

func TestPriceTicketUnknownOption(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{
		Ticket:  &TicketSelection{OptionID: "opt-missing", Quantity: 3},
		Options: testOptions(),
	})
	if !res.EventFiat.IsZero() {
		t.Fatalf("unknown option priced at %d", res.EventFiat.Amount)
	}
}

func TestAggregateAncillaryEmptyInput(t *testing.T) {
	t.Parallel()
	res := AggregateAncillary(AncillaryInput{})
	if !res.UtilityFiat.IsZero() || !res.FoodFiat.IsZero() || !res.EventFiat.IsZero() {
		t.Fatalf("empty input produced charges: %+v", res)
	}
}
