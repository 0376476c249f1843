package source

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
	"tcgradar/internal/models"
)

// Source keys as stored in market_prices.source.
const (
	KeyJustTCG   = "justtcg"
	KeyEBay      = "ebay"
	KeyPokeTrace = "poketrace"
)

// ErrSourceFailed marks an upstream failure that survived the retry
// budget. Transient trouble (network errors, 5xx, 429) is retried inside
// the HTTP client before this surfaces.
var ErrSourceFailed = errors.New("source: upstream failed")

// PriceRow is one quote from a price source. USD and EUR are each
// optional; the buy-side aggregator fills both.
type PriceRow struct {
	CardID string

	PriceUSD *decimal.Decimal
	PriceEUR *decimal.Decimal

	Condition *string

	SellerID     *string
	SellerRating *decimal.Decimal
	SellerSales  *int

	Sales30d       *int
	ActiveListings *int

	// ListingURL feeds the optional scraper enrichment; it is never stored.
	ListingURL *string
}

type SetInfo struct {
	Code        string
	Name        string
	ReleaseDate *time.Time
	Total       int
}

type Velocity struct {
	Sales30d       int
	ActiveListings int
}

type PriceSource interface {
	Name() string
	FetchSet(ctx context.Context, setCode string) ([]PriceRow, error)
	FetchCard(ctx context.Context, cardID string) (*PriceRow, error)
}

type MetadataSource interface {
	FetchCard(ctx context.Context, cardID string) (*models.CardMetadata, error)
	FetchSet(ctx context.Context, setCode string) ([]models.CardMetadata, error)
	FetchSetInfo(ctx context.Context, setCode string) (*SetInfo, error)
}

type VelocitySource interface {
	FetchVelocity(ctx context.Context, cardID string) (*Velocity, error)
}

// newClient builds the shared resty client: per-request timeout, bounded
// exponential backoff on network errors, 5xx and 429. 4xx is never
// retried.
func newClient(baseURL string, cfg config.SourcesConfig) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitMin).
		SetRetryMaxWaitTime(cfg.RetryWaitMax).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() >= http.StatusInternalServerError ||
				resp.StatusCode() == http.StatusTooManyRequests
		})
}

func (r PriceRow) ToModel(sourceKey string) models.MarketPrice {
	return models.MarketPrice{
		CardID:         r.CardID,
		Source:         sourceKey,
		PriceUSD:       r.PriceUSD,
		PriceEUR:       r.PriceEUR,
		Condition:      r.Condition,
		SellerID:       r.SellerID,
		SellerRating:   r.SellerRating,
		SellerSales:    r.SellerSales,
		Sales30d:       r.Sales30d,
		ActiveListings: r.ActiveListings,
	}
}
