package notify

import (
	"context"
	"fmt"
	"strings"

	"tcgradar/internal/models"
)

// Notifier delivers signals to one chat provider. Implementations report
// success with a bool and never panic; a failed send is logged and the
// caller decides whether to retry on the next scan.
type Notifier interface {
	Name() string
	SendOne(ctx context.Context, channelID int64, sig models.Signal) bool
	SendBatch(ctx context.Context, channelID int64, sigs []models.Signal) bool
	SendDigest(ctx context.Context, channelID int64, sigs []models.Signal) bool
}

func formatSignal(sig models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", sig.CardName)
	fmt.Fprintf(&b, "Buy EUR %s / Sell USD %s\n", sig.PriceEUR, sig.PriceUSD)
	fmt.Fprintf(&b, "Net profit $%s (%s%%)\n", sig.NetProfit, sig.MarginPct)
	if sig.VelocityTier != nil {
		fmt.Fprintf(&b, "Velocity tier %d", *sig.VelocityTier)
		if sig.TrendClassification != nil {
			fmt.Fprintf(&b, " / %s", *sig.TrendClassification)
		}
		b.WriteString("\n")
	}
	if sig.BundleTier != nil && *sig.BundleTier != "single_card" {
		fmt.Fprintf(&b, "Bundle: %s\n", *sig.BundleTier)
	}
	if sig.TCGPlayerURL != nil {
		fmt.Fprintf(&b, "TCGPlayer: %s\n", *sig.TCGPlayerURL)
	}
	if sig.CardmarketURL != nil {
		fmt.Fprintf(&b, "Cardmarket: %s\n", *sig.CardmarketURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDigest(sigs []models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Arbitrage digest: %d signals\n", len(sigs))
	for i, sig := range sigs {
		fmt.Fprintf(&b, "%d. %s: $%s net\n", i+1, sig.CardName, sig.NetProfit)
	}
	return strings.TrimRight(b.String(), "\n")
}
