package money

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"tcgradar/internal/config"
)

func TestCachedRatesFallsBackWithoutKey(t *testing.T) {
	rates := NewCachedRates(config.ForexConfig{
		StaticRate: d("1.08"),
		APIBaseURL: "http://127.0.0.1:0",
		CacheTTL:   15 * time.Minute,
		Timeout:    time.Second,
	}, zap.NewNop())

	got := rates.EURUSD(context.Background())
	if !got.Equal(d("1.08")) {
		t.Fatalf("expected static fallback 1.08, got %s", got)
	}
}

func TestStaticRates(t *testing.T) {
	rates := StaticRates{Rate: d("1.10")}
	if got := rates.EURUSD(context.Background()); !got.Equal(d("1.10")) {
		t.Fatalf("expected 1.10, got %s", got)
	}
}
