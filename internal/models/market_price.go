package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketPrice holds the latest quote per (card, source). Rows are upserted
// on each poll; every successful upsert also appends one PriceHistory row
// in the same transaction. Public market data, no tenant scoping.
type MarketPrice struct {
	CardID string `gorm:"primaryKey;type:text"`
	Source string `gorm:"primaryKey;type:text"`

	PriceUSD  *decimal.Decimal `gorm:"type:numeric(10,2)"`
	PriceEUR  *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Condition *string          `gorm:"type:varchar(8)"`

	// Seller fields are populated only when the scraper enrichment ran.
	SellerID     *string          `gorm:"type:text"`
	SellerRating *decimal.Decimal `gorm:"type:numeric(5,2)"`
	SellerSales  *int

	// Velocity fields are populated by the velocity source.
	Sales30d       *int
	ActiveListings *int

	LastUpdated time.Time `gorm:"type:timestamptz;autoUpdateTime;not null"`
}

func (MarketPrice) TableName() string {
	return "market_prices"
}
