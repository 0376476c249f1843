package money

import (
	"errors"
	"testing"

	"tcgradar/internal/config"
)

func defaultCustoms() CustomsTable {
	return NewCustomsTable(config.CustomsConfig{
		USDeMinimisUSD:      d("800.00"),
		USStandardRate:      d("0.025"),
		EUVATRate:           d("0.21"),
		EUFlatDutyEUR:       d("3.00"),
		UKVATRate:           d("0.20"),
		UKLowValueThreshold: d("135.00"),
	})
}

func TestDeMinimisRegimes(t *testing.T) {
	table := defaultCustoms()
	fx := defaultFX()
	for _, regime := range []string{RegimeDeMinimis, RegimePreJuly2026} {
		got, err := table.Charge(d("500.00"), regime, fx)
		if err != nil {
			t.Fatalf("%s below threshold: %v", regime, err)
		}
		if !got.IsZero() {
			t.Fatalf("%s below threshold: expected 0, got %s", regime, got)
		}
		got, err = table.Charge(d("800.00"), regime, fx)
		if err != nil {
			t.Fatalf("%s at threshold: %v", regime, err)
		}
		if !got.Equal(d("20.00")) {
			t.Fatalf("%s at threshold: expected 20.00, got %s", regime, got)
		}
	}
}

func TestIOSSRegimes(t *testing.T) {
	table := defaultCustoms()
	fx := defaultFX()
	for _, regime := range []string{RegimeIOSSEU, RegimePostJuly2026} {
		got, err := table.Charge(d("100.00"), regime, fx)
		if err != nil {
			t.Fatalf("%s: %v", regime, err)
		}
		// 21% of 100 plus EUR 3 flat duty at the buffered rate.
		if !got.Equal(d("24.30")) {
			t.Fatalf("%s: expected 24.30, got %s", regime, got)
		}
	}
}

func TestUKLowValueRegime(t *testing.T) {
	table := defaultCustoms()
	fx := defaultFX()
	got, err := table.Charge(d("100.00"), RegimeUKLowValue, fx)
	if err != nil {
		t.Fatalf("below threshold: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("below threshold: expected 0, got %s", got)
	}
	got, err = table.Charge(d("200.00"), RegimeUKLowValue, fx)
	if err != nil {
		t.Fatalf("above threshold: %v", err)
	}
	if !got.Equal(d("40.00")) {
		t.Fatalf("above threshold: expected 40.00, got %s", got)
	}
}

func TestUnknownRegimeFails(t *testing.T) {
	table := defaultCustoms()
	if _, err := table.Charge(d("100"), "made_up", defaultFX()); !errors.Is(err, ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime, got %v", err)
	}
}
