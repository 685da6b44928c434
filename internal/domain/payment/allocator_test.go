package payment

import (
	"errors"
	"testing"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

func testQuote() pricing.Quote {
	return pricing.Quote{
		RentalFiat:  money.Must(200, money.Fiat),
		RentalToken: money.Must(80, money.Token),
		UtilityFiat: money.Must(50, money.Fiat),
		FoodFiat:    money.Must(30, money.Fiat),
		EventFiat:   money.Zero(money.Fiat),
		TotalFiat:   money.Must(280, money.Fiat),
		TotalToken:  money.Must(80, money.Token),
	}
}

func noFunds() Balances {
	return Balances{
		TokenBalance:  money.Zero(money.Token),
		CreditBalance: money.Zero(money.Credit),
	}
}

func TestAllocateAllFiat(t *testing.T) {
	t.Parallel()
	alloc, err := Allocate(testQuote(), Election{}, noFunds())
	if err != nil {
		t.Fatal(err)
	}
	if alloc.FiatPortion.Amount != 280 {
		t.Fatalf("fiat = %d, want 280", alloc.FiatPortion.Amount)
	}
	if !alloc.TokenPortion.IsZero() || !alloc.CreditPortion.IsZero() {
		t.Fatalf("unexpected non-fiat portions: %+v", alloc)
	}
	if alloc.SettledFiat().Amount != 280 {
		t.Fatalf("settled = %d, want 280", alloc.SettledFiat().Amount)
	}
}

func TestAllocateTokensCoverRental(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Must(100, money.Token),
		CreditBalance: money.Zero(money.Credit),
	}
	alloc, err := Allocate(testQuote(), Election{UseTokens: true}, b)
	if err != nil {
		t.Fatal(err)
	}
	if alloc.TokenPortion.Amount != 80 {
		t.Fatalf("token = %d, want 80", alloc.TokenPortion.Amount)
	}
	if alloc.TokenFiatEquivalent.Amount != 200 {
		t.Fatalf("token fiat equivalent = %d, want 200", alloc.TokenFiatEquivalent.Amount)
	}
	// ancillary charges always stay fiat
	if alloc.FiatPortion.Amount != 80 {
		t.Fatalf("fiat = %d, want 80", alloc.FiatPortion.Amount)
	}
	if alloc.SettledFiat().Amount != 280 {
		t.Fatalf("settled = %d, want 280", alloc.SettledFiat().Amount)
	}
}

func TestAllocateInsufficientTokens(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Must(79, money.Token),
		CreditBalance: money.Zero(money.Credit),
	}
	_, err := Allocate(testQuote(), Election{UseTokens: true}, b)
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Instrument != InstrumentToken {
		t.Fatalf("instrument = %s, want token", insufficient.Instrument)
	}
	if insufficient.Required.Amount != 80 || insufficient.Available.Amount != 79 {
		t.Fatalf("unexpected amounts: %+v", insufficient)
	}
}

func TestAllocatePartialCredits(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Zero(money.Token),
		CreditBalance: money.Must(120, money.Credit),
	}
	alloc, err := Allocate(testQuote(), Election{UseCredits: true}, b)
	if err != nil {
		t.Fatal(err)
	}
	// credits cover 120 of the 200 rental, remainder plus ancillary on fiat
	if alloc.CreditPortion.Amount != 120 {
		t.Fatalf("credit = %d, want 120", alloc.CreditPortion.Amount)
	}
	if alloc.FiatPortion.Amount != 160 {
		t.Fatalf("fiat = %d, want 160", alloc.FiatPortion.Amount)
	}
	if alloc.SettledFiat().Amount != 280 {
		t.Fatalf("settled = %d, want 280", alloc.SettledFiat().Amount)
	}
}

func TestAllocateCreditsCapAtRental(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Zero(money.Token),
		CreditBalance: money.Must(1_000, money.Credit),
	}
	alloc, err := Allocate(testQuote(), Election{UseCredits: true}, b)
	if err != nil {
		t.Fatal(err)
	}
	if alloc.CreditPortion.Amount != 200 {
		t.Fatalf("credit = %d, want 200", alloc.CreditPortion.Amount)
	}
	if alloc.FiatPortion.Amount != 80 {
		t.Fatalf("fiat = %d, want 80", alloc.FiatPortion.Amount)
	}
}

func TestAllocateTokensThenCreditsLeaveNothingForCredits(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Must(80, money.Token),
		CreditBalance: money.Must(500, money.Credit),
	}
	alloc, err := Allocate(testQuote(), Election{UseTokens: true, UseCredits: true}, b)
	if err != nil {
		t.Fatal(err)
	}
	if alloc.TokenPortion.Amount != 80 {
		t.Fatalf("token = %d, want 80", alloc.TokenPortion.Amount)
	}
	if !alloc.CreditPortion.IsZero() {
		t.Fatalf("credit = %d, want 0", alloc.CreditPortion.Amount)
	}
	if alloc.FiatPortion.Amount != 80 {
		t.Fatalf("fiat = %d, want 80", alloc.FiatPortion.Amount)
	}
}

func TestAllocateConservation(t *testing.T) {
	t.Parallel()
	elections := []Election{
		{},
		{UseTokens: true},
		{UseCredits: true},
		{UseTokens: true, UseCredits: true},
	}
	b := Balances{
		TokenBalance:  money.Must(500, money.Token),
		CreditBalance: money.Must(90, money.Credit),
	}
	for _, e := range elections {
		alloc, err := Allocate(testQuote(), e, b)
		if err != nil {
			t.Fatalf("election %+v: %v", e, err)
		}
		if got := alloc.SettledFiat().Amount; got != 280 {
			t.Fatalf("election %+v settled %d, want 280", e, got)
		}
	}
}

func TestAllocateRejectsNegativeBalances(t *testing.T) {
	t.Parallel()
	b := Balances{
		TokenBalance:  money.Must(-1, money.Token),
		CreditBalance: money.Zero(money.Credit),
	}
	if _, err := Allocate(testQuote(), Election{}, b); !errors.Is(err, ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
}

func TestAllocateTokenElectionWithNoTokenPrice(t *testing.T) {
	t.Parallel()
	q := testQuote()
	q.RentalToken = money.Zero(money.Token)
	q.TotalToken = money.Zero(money.Token)
	alloc, err := Allocate(q, Election{UseTokens: true}, noFunds())
	if err != nil {
		t.Fatal(err)
	}
	if !alloc.TokenPortion.IsZero() {
		t.Fatalf("token = %d, want 0", alloc.TokenPortion.Amount)
	}
	if alloc.FiatPortion.Amount != 280 {
		t.Fatalf("fiat = %d, want 280", alloc.FiatPortion.Amount)
	}
}
