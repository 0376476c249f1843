package money

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcgradar/internal/config"
)

// RateProvider hands out the EUR/USD spot rate. Implementations never
// fail: on any trouble they fall back to a static rate so the scan keeps
// running.
type RateProvider interface {
	EURUSD(ctx context.Context) decimal.Decimal
}

// StaticRates always returns a fixed rate. Used in tests and when no API
// key is configured.
type StaticRates struct {
	Rate decimal.Decimal
}

func (s StaticRates) EURUSD(context.Context) decimal.Decimal {
	return s.Rate
}

// CachedRates fronts a live exchange-rate API with a TTL cache. A single
// mutex covers the cache so at most one goroutine refreshes at a time.
type CachedRates struct {
	client   *resty.Client
	apiKey   string
	fallback decimal.Decimal
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

func NewCachedRates(cfg config.ForexConfig, log *zap.Logger) *CachedRates {
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.Timeout)
	return &CachedRates{
		client:   client,
		apiKey:   cfg.APIKey,
		fallback: cfg.StaticRate,
		ttl:      cfg.CacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (c *CachedRates) EURUSD(ctx context.Context) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rate
	}
	if c.apiKey == "" {
		return c.fallback
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("forex fetch failed, using fallback rate",
			zap.Error(err),
			zap.String("fallback", c.fallback.String()))
		if !c.fetchedAt.IsZero() {
			return c.rate
		}
		return c.fallback
	}

	c.rate = rate
	c.fetchedAt = c.now()
	return rate
}

type pairResponse struct {
	Result         string  `json:"result"`
	ConversionRate float64 `json:"conversion_rate"`
}

func (c *CachedRates) fetch(ctx context.Context) (decimal.Decimal, error) {
	var out pairResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/%s/pair/EUR/USD", c.apiKey))
	if err != nil {
		return decimal.Zero, err
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("forex api status %d", resp.StatusCode())
	}
	if out.Result != "success" || out.ConversionRate <= 0 {
		return decimal.Zero, fmt.Errorf("forex api result %q", out.Result)
	}
	return decimal.NewFromFloat(out.ConversionRate), nil
}
