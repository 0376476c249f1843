package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultFX() FX {
	return FX{Rate: d("1.08"), Buffer: d("0.02")}
}

func TestEURToUSDAppliesBuffer(t *testing.T) {
	got, err := defaultFX().EURToUSD(d("40.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("44.06")) {
		t.Fatalf("expected 44.06, got %s", got)
	}
}

func TestUSDToEURAppliesBuffer(t *testing.T) {
	got, err := defaultFX().USDToEUR(d("44.06"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("40.00")) {
		t.Fatalf("expected 40.00, got %s", got)
	}
}

func TestForexRoundTripStable(t *testing.T) {
	fx := defaultFX()
	for _, amount := range []string{"1.00", "12.34", "40.00", "999.99"} {
		usd, err := fx.EURToUSD(d(amount))
		if err != nil {
			t.Fatalf("eur->usd %s: %v", amount, err)
		}
		back, err := fx.USDToEUR(usd)
		if err != nil {
			t.Fatalf("usd->eur %s: %v", amount, err)
		}
		diff := back.Sub(d(amount)).Abs()
		if diff.GreaterThan(d("0.01")) {
			t.Fatalf("round trip of %s drifted to %s", amount, back)
		}
	}
}

func TestForexRejectsBadInput(t *testing.T) {
	fx := defaultFX()
	if _, err := fx.EURToUSD(d("-1")); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for negative amount, got %v", err)
	}
	if _, err := fx.USDToEUR(d("-0.01")); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for negative amount, got %v", err)
	}
	zeroRate := FX{Rate: decimal.Zero, Buffer: d("0.02")}
	if _, err := zeroRate.EURToUSD(d("10")); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for zero rate, got %v", err)
	}
}
