package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is the append-only price log behind the 7-day trend
// regression. Rows are inserted, never updated.
type PriceHistory struct {
	ID     uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CardID string    `gorm:"type:text;not null;index:ix_price_history_card_source_recorded,priority:1"`
	Source string    `gorm:"type:text;not null;index:ix_price_history_card_source_recorded,priority:2"`

	PriceUSD *decimal.Decimal `gorm:"type:numeric(10,2)"`
	PriceEUR *decimal.Decimal `gorm:"type:numeric(10,2)"`

	RecordedAt time.Time `gorm:"type:timestamptz;not null;index:ix_price_history_card_source_recorded,priority:3"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}
