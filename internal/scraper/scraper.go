package scraper

import (
	"context"

	"github.com/shopspring/decimal"

	"tcgradar/internal/models"
)

// How a result was obtained.
const (
	MethodNetworkIntercept = "network_intercept"
	MethodCSSFallback      = "css_fallback"
	MethodVision           = "vision"
)

// Result is a listing-level enrichment scraped from a marketplace page.
// Raw page HTML and seller free text must never leave the scraper; only
// these structured fields (and, for the vision path, screenshot bytes)
// cross the boundary.
type Result struct {
	PriceEUR     *decimal.Decimal
	SellerID     *string
	SellerRating *decimal.Decimal
	SellerSales  *int
	Condition    *string
	ShippingEUR  *decimal.Decimal

	Method string
}

// Scraper pulls seller-level detail for a single listing URL. Optional
// capability behind the layer-3 feature flag.
type Scraper interface {
	ScrapeListing(ctx context.Context, listingURL string) (*Result, error)
}

// Disabled is the no-op used when the feature flag is off.
type Disabled struct{}

func (Disabled) ScrapeListing(context.Context, string) (*Result, error) {
	return nil, nil
}

// MergeInto copies scraped fields onto a price row, leaving anything the
// scrape did not produce untouched.
func (r *Result) MergeInto(row *models.MarketPrice) {
	if r == nil || row == nil {
		return
	}
	if r.PriceEUR != nil {
		row.PriceEUR = r.PriceEUR
	}
	if r.SellerID != nil {
		row.SellerID = r.SellerID
	}
	if r.SellerRating != nil {
		row.SellerRating = r.SellerRating
	}
	if r.SellerSales != nil {
		row.SellerSales = r.SellerSales
	}
	if r.Condition != nil {
		row.Condition = r.Condition
	}
}
