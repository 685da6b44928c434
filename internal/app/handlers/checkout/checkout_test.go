package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	appoutbox "staybook/internal/app/outbox"
	apppolicies "staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayment "staybook/internal/domain/payment"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	factory  *memory.Factory
	outbox   *memory.Outbox
	balances *memory.BalanceStore
	bookings *memory.BookingRepository
	handler  *CheckoutHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	listings := memory.NewListingRepository()
	reservations := memory.NewReservationRepository()
	bookings := memory.NewBookingRepository()
	balances := memory.NewBalanceStore()
	policyStore := memory.NewPolicyStore()
	box := memory.NewOutbox()

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:               "lst-1",
		Title:            "Garden cabin",
		BaseRate:         money.Must(100, money.Fiat),
		TokenRate:        money.Must(40, money.Token),
		AvailabilityTags: []domainlistings.Category{domainlistings.CategoryGuest},
		Capacity:         4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := listings.Save(context.Background(), listing); err != nil {
		t.Fatal(err)
	}

	policyStore.Publish(apppolicies.PolicyBundle{
		Version: "v1",
		Pricing: domainpricing.PolicySnapshot{
			Version:    "v1",
			Duration:   domainpricing.StandardDurationDiscounts(),
			UtilityFee: money.Must(500, money.Fiat),
		},
		Cancellation: &domainbooking.CancellationPolicy{
			LastWeekBps: 5_000, LastMonthBps: 7_500, DefaultBps: 10_000,
		},
	})

	factory := memory.NewFactory(memory.FactoryDeps{
		Listings:     listings,
		Reservations: reservations,
		Bookings:     bookings,
		Balances:     balances,
		Policies:     policyStore,
	})
	handler := &CheckoutHandler{
		UoWFactory: factory,
		Outbox:     box,
		Encoder:    appoutbox.JSONEventEncoder{},
		Now:        func() time.Time { return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC) },
	}
	return fixture{factory: factory, outbox: box, balances: balances, bookings: bookings, handler: handler}
}

func checkoutCmd(id string) CheckoutCommand {
	return CheckoutCommand{
		CommandID: id,
		AccountID: "acc-1",
		ListingID: "lst-1",
		Start:     time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		Adults:    2,
		Category:  "guest",
	}
}

func TestCheckoutAllFiat(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	res, err := fx.handler.Handle(context.Background(), checkoutCmd("bk-1"))
	if err != nil {
		t.Fatal(err)
	}
	// 3 nights at 100 plus the 500 utility fee
	if res.TotalFiat != 800 {
		t.Fatalf("total = %d, want 800", res.TotalFiat)
	}
	if res.FiatPortion != 800 || res.TokenPortion != 0 || res.CreditPortion != 0 {
		t.Fatalf("allocation: %+v", res)
	}
	if res.PolicyVersion != "v1" {
		t.Fatalf("policy version = %q", res.PolicyVersion)
	}

	bk, err := fx.bookings.ByID(context.Background(), domainbooking.BookingID(res.BookingID))
	if err != nil {
		t.Fatal(err)
	}
	if bk.Status != domainbooking.StatusPaid {
		t.Fatalf("status = %s, want PAID", bk.Status)
	}
	if bk.Policy == nil || bk.Policy.LastWeekBps != 5_000 {
		t.Fatalf("cancellation policy not frozen: %+v", bk.Policy)
	}
}

func TestCheckoutDoubleBookingRejected(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	if _, err := fx.handler.Handle(context.Background(), checkoutCmd("bk-1")); err != nil {
		t.Fatal(err)
	}
	_, err := fx.handler.Handle(context.Background(), checkoutCmd("bk-2"))
	if !errors.Is(err, ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}
}

func TestCheckoutBackToBackStaysBothSucceed(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	if _, err := fx.handler.Handle(context.Background(), checkoutCmd("bk-1")); err != nil {
		t.Fatal(err)
	}
	second := checkoutCmd("bk-2")
	second.Start = time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)
	second.End = time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	if _, err := fx.handler.Handle(context.Background(), second); err != nil {
		t.Fatalf("back-to-back stay rejected: %v", err)
	}
}

func TestCheckoutWithTokensDebitsBalance(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.balances.SetBalances("acc-1", domainpayment.Balances{
		TokenBalance:  money.Must(200, money.Token),
		CreditBalance: money.Zero(money.Credit),
	})

	cmd := checkoutCmd("bk-1")
	cmd.UseTokens = true
	res, err := fx.handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	// 3 nights at token rate 40 cover the rental, utility stays fiat
	if res.TokenPortion != 120 {
		t.Fatalf("token portion = %d, want 120", res.TokenPortion)
	}
	if res.FiatPortion != 500 {
		t.Fatalf("fiat portion = %d, want 500", res.FiatPortion)
	}

	b, err := fx.balances.Balances(context.Background(), "acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.TokenBalance.Amount != 80 {
		t.Fatalf("token balance after debit = %d, want 80", b.TokenBalance.Amount)
	}
}

func TestCheckoutInsufficientTokens(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.balances.SetBalances("acc-1", domainpayment.Balances{
		TokenBalance:  money.Must(50, money.Token),
		CreditBalance: money.Zero(money.Credit),
	})

	cmd := checkoutCmd("bk-1")
	cmd.UseTokens = true
	_, err := fx.handler.Handle(context.Background(), cmd)
	var insufficient *domainpayment.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}

	// nothing persisted
	if _, err := fx.bookings.ByID(context.Background(), "bk-1"); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("failed checkout left a booking behind: %v", err)
	}
}

func TestCheckoutPartialCredits(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.balances.SetBalances("acc-1", domainpayment.Balances{
		TokenBalance:  money.Zero(money.Token),
		CreditBalance: money.Must(120, money.Credit),
	})

	cmd := checkoutCmd("bk-1")
	cmd.UseCredits = true
	res, err := fx.handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.CreditPortion != 120 {
		t.Fatalf("credit portion = %d, want 120", res.CreditPortion)
	}
	// 300 rental minus 120 credits, plus 500 utility
	if res.FiatPortion != 680 {
		t.Fatalf("fiat portion = %d, want 680", res.FiatPortion)
	}

	b, err := fx.balances.Balances(context.Background(), "acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.CreditBalance.Amount != 0 {
		t.Fatalf("credit balance after debit = %d, want 0", b.CreditBalance.Amount)
	}
}

type failingEncoder struct{}

func (failingEncoder) Encode(ev events.DomainEvent) (appoutbox.EventRecord, error) {
	return appoutbox.EventRecord{}, errors.New("encode failed")
}

func TestCheckoutFailureRollsBackDebitAndReservation(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.balances.SetBalances("acc-1", domainpayment.Balances{
		TokenBalance:  money.Must(200, money.Token),
		CreditBalance: money.Zero(money.Credit),
	})
	fx.handler.Encoder = failingEncoder{}

	cmd := checkoutCmd("bk-1")
	cmd.UseTokens = true
	if _, err := fx.handler.Handle(context.Background(), cmd); err == nil {
		t.Fatal("expected the checkout to fail")
	}

	b, err := fx.balances.Balances(context.Background(), "acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if b.TokenBalance.Amount != 200 {
		t.Fatalf("token balance after rollback = %d, want 200", b.TokenBalance.Amount)
	}
	if _, err := fx.bookings.ByID(context.Background(), "bk-1"); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("failed checkout left a booking behind: %v", err)
	}

	// the range must be free again for a retry
	fx.handler.Encoder = appoutbox.JSONEventEncoder{}
	retry := checkoutCmd("bk-2")
	retry.UseTokens = true
	if _, err := fx.handler.Handle(context.Background(), retry); err != nil {
		t.Fatalf("retry after rollback rejected: %v", err)
	}
}

func TestCheckoutConcurrentSameRangeSingleWinner(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.handler.Handle(context.Background(), checkoutCmd(fmt.Sprintf("bk-%d", i)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrListingUnavailable):
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestCheckoutUnknownListing(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	cmd := checkoutCmd("bk-1")
	cmd.ListingID = "lst-missing"
	_, err := fx.handler.Handle(context.Background(), cmd)
	if !errors.Is(err, domainlistings.ErrListingMissing) {
		t.Fatalf("expected ErrListingMissing, got %v", err)
	}
}
