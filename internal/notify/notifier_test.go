package notify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tcgradar/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSignal() models.Signal {
	tier := 2
	trendLabel := "Stable"
	bundle := "single_card"
	tcgURL := "https://www.tcgplayer.com/product/12345"
	return models.Signal{
		CardName:            "Pikachu ex",
		PriceEUR:            d("40.00"),
		PriceUSD:            d("100.00"),
		NetProfit:           d("30.19"),
		MarginPct:           d("33.83"),
		VelocityTier:        &tier,
		TrendClassification: &trendLabel,
		BundleTier:          &bundle,
		TCGPlayerURL:        &tcgURL,
	}
}

func TestFormatSignal(t *testing.T) {
	msg := formatSignal(testSignal())

	for _, want := range []string{
		"Pikachu ex",
		"Buy EUR 40 / Sell USD 100",
		"Net profit $30.19 (33.83%)",
		"Velocity tier 2 / Stable",
		"https://www.tcgplayer.com/product/12345",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	// single_card is the quiet default and never announced.
	if strings.Contains(msg, "Bundle") {
		t.Fatalf("single card should not carry a bundle line:\n%s", msg)
	}
}

func TestFormatSignalBundleLine(t *testing.T) {
	sig := testSignal()
	bundle := "bundle_alert"
	sig.BundleTier = &bundle

	if !strings.Contains(formatSignal(sig), "Bundle: bundle_alert") {
		t.Fatal("bundle tier should be announced for multi-card sellers")
	}
}

func TestFormatDigest(t *testing.T) {
	sigs := []models.Signal{testSignal(), testSignal()}
	msg := formatDigest(sigs)

	if !strings.Contains(msg, "Arbitrage digest: 2 signals") {
		t.Fatalf("unexpected digest header:\n%s", msg)
	}
	if !strings.Contains(msg, "1. Pikachu ex: $30.19 net") {
		t.Fatalf("unexpected digest line:\n%s", msg)
	}
}
