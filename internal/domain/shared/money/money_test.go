package money

import (
	"errors"
	"testing"
)

func TestNewRejectsUnknownCurrency(t *testing.T) {
	t.Parallel()
	if _, err := New(100, Currency("EUR")); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	t.Parallel()
	_, err := Must(100, Fiat).Add(Must(50, Token))
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestAddUnsetOperand(t *testing.T) {
	t.Parallel()
	_, err := Money{}.Add(Must(50, Fiat))
	if !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestMulBps(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{name: "identity", amount: 300, bps: 10_000, want: 300},
		{name: "ten percent off", amount: 500, bps: 9_000, want: 450},
		{name: "twenty percent up", amount: 500, bps: 12_000, want: 600},
		{name: "half rounds to even down", amount: 25, bps: 5_000, want: 12},
		{name: "half rounds to even up", amount: 35, bps: 5_000, want: 18},
		{name: "below half truncates", amount: 100, bps: 2_449, want: 24},
		{name: "above half rounds away", amount: 100, bps: 2_551, want: 26},
		{name: "negative half to even", amount: -25, bps: 5_000, want: -12},
		{name: "zero", amount: 0, bps: 7_500, want: 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Must(tc.amount, Fiat).MulBps(tc.bps)
			if got.Amount != tc.want {
				t.Fatalf("MulBps(%d, %d) = %d, want %d", tc.amount, tc.bps, got.Amount, tc.want)
			}
			if got.Currency != Fiat {
				t.Fatalf("currency changed to %s", got.Currency)
			}
		})
	}
}

func TestConvertAtParity(t *testing.T) {
	t.Parallel()
	got := Must(120, Credit).Convert(Fiat, BpsScale)
	if got.Amount != 120 || got.Currency != Fiat {
		t.Fatalf("Convert = %+v, want 120 FIAT", got)
	}
}

func TestMin(t *testing.T) {
	t.Parallel()
	got, err := Must(80, Fiat).Min(Must(200, Fiat))
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 80 {
		t.Fatalf("Min = %d, want 80", got.Amount)
	}
}

func TestIsSet(t *testing.T) {
	t.Parallel()
	if (Money{}).IsSet() {
		t.Fatal("zero Money reported as set")
	}
	if !Zero(Fiat).IsSet() {
		t.Fatal("zero fiat amount reported as unset")
	}
}
