package pricing

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func stay(y int, m time.Month, d, nights int) daterange.DateRange {
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return daterange.MustNew(start, start.AddDate(0, 0, nights))
}

func testSeason() SeasonPolicy {
	return SeasonPolicy{
		HighSeasonStart: time.June,
		HighSeasonEnd:   time.August,
		ModifierBps:     12_000,
	}
}

func TestCalculateRateShortStay(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.March, 10, 3),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RentalFiat.Amount != 300 {
		t.Fatalf("rental = %d, want 300", res.RentalFiat.Amount)
	}
	if res.AppliedDiscountBps != 0 {
		t.Fatalf("discount = %d, want 0", res.AppliedDiscountBps)
	}
}

func TestCalculateRateWeeklyDiscount(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(50, money.Fiat),
		Range:    stay(2026, time.March, 1, 10),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// 10 nights at 50 with the 10% weekly discount
	if res.RentalFiat.Amount != 450 {
		t.Fatalf("rental = %d, want 450", res.RentalFiat.Amount)
	}
	if res.AppliedDiscountBps != 1_000 {
		t.Fatalf("discount = %d, want 1000", res.AppliedDiscountBps)
	}
}

func TestCalculateRateMonthlyDiscount(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.January, 1, 30),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RentalFiat.Amount != 2_250 {
		t.Fatalf("rental = %d, want 2250", res.RentalFiat.Amount)
	}
	if res.AppliedDiscountBps != 2_500 {
		t.Fatalf("discount = %d, want 2500", res.AppliedDiscountBps)
	}
}

func TestCalculateRateHighSeasonWithholdsDiscount(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.July, 1, 10),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// 10 nights at 100, scaled by 1.2, no weekly discount in high season
	if res.RentalFiat.Amount != 1_200 {
		t.Fatalf("rental = %d, want 1200", res.RentalFiat.Amount)
	}
	if res.AppliedDiscountBps != 0 {
		t.Fatalf("discount = %d, want 0", res.AppliedDiscountBps)
	}
	if res.AppliedSeasonModifierBps != 12_000 {
		t.Fatalf("modifier = %d, want 12000", res.AppliedSeasonModifierBps)
	}
}

func TestCalculateRateHighSeasonStacking(t *testing.T) {
	t.Parallel()
	season := testSeason()
	season.StacksWithDurationDiscount = true
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.July, 1, 10),
		Season:   season,
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// 1000 * 1.2 * 0.9
	if res.RentalFiat.Amount != 1_080 {
		t.Fatalf("rental = %d, want 1080", res.RentalFiat.Amount)
	}
}

func TestCalculateRateSeasonKeysOffStartMonth(t *testing.T) {
	t.Parallel()
	// starts in May, runs into June: low season pricing throughout
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.May, 30, 3),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RentalFiat.Amount != 300 {
		t.Fatalf("rental = %d, want 300", res.RentalFiat.Amount)
	}
}

func TestSeasonWindowWrapsYearEnd(t *testing.T) {
	t.Parallel()
	p := SeasonPolicy{HighSeasonStart: time.November, HighSeasonEnd: time.February, ModifierBps: 11_000}
	for _, m := range []time.Month{time.November, time.December, time.January, time.February} {
		if !p.InHighSeason(m) {
			t.Fatalf("month %s should be high season", m)
		}
	}
	for _, m := range []time.Month{time.March, time.October} {
		if p.InHighSeason(m) {
			t.Fatalf("month %s should be low season", m)
		}
	}
}

func TestCalculateRateTokenComponent(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate:  money.Must(100, money.Fiat),
		TokenRate: money.Must(40, money.Token),
		Range:     stay(2026, time.March, 1, 10),
		Season:    testSeason(),
		Duration:  StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// token rate follows the same discount shape
	if res.RentalToken.Amount != 360 {
		t.Fatalf("token rental = %d, want 360", res.RentalToken.Amount)
	}
	if res.RentalToken.Currency != money.Token {
		t.Fatalf("token currency = %s", res.RentalToken.Currency)
	}
}

func TestCalculateRateNoTokenRate(t *testing.T) {
	t.Parallel()
	res, err := CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Range:    stay(2026, time.March, 1, 2),
		Duration: StandardDurationDiscounts(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.RentalToken.IsZero() {
		t.Fatalf("token rental = %d, want 0", res.RentalToken.Amount)
	}
}

func TestCalculateRateErrors(t *testing.T) {
	t.Parallel()
	_, err := CalculateRate(RateInput{
		Range:    stay(2026, time.March, 1, 3),
		Duration: StandardDurationDiscounts(),
	})
	if !errors.Is(err, ErrMissingRatePolicy) {
		t.Fatalf("expected ErrMissingRatePolicy, got %v", err)
	}

	_, err = CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Fiat),
		Duration: StandardDurationDiscounts(),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero range, got %v", err)
	}

	_, err = CalculateRate(RateInput{
		BaseRate: money.Must(100, money.Token),
		Range:    stay(2026, time.March, 1, 3),
	})
	if !errors.Is(err, ErrMissingRatePolicy) {
		t.Fatalf("expected ErrMissingRatePolicy for non-fiat base rate, got %v", err)
	}
}

func TestCalculateRateDeterministic(t *testing.T) {
	t.Parallel()
	in := RateInput{
		BaseRate: money.Must(137, money.Fiat),
		Range:    stay(2026, time.July, 3, 9),
		Season:   testSeason(),
		Duration: StandardDurationDiscounts(),
	}
	first, err := CalculateRate(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := CalculateRate(in)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}
