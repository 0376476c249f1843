package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Signal is a scored arbitrage opportunity routed to exactly one tenant at
// a time. Every read of this table must carry a tenant predicate; the only
// bypass is the repository's Admin methods used by the cascade sweep.
type Signal struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:ix_signals_tenant_created,priority:1"`

	CardID   string `gorm:"type:text;not null"`
	CardName string `gorm:"type:text;not null"`
	Category string `gorm:"type:varchar(30);not null;default:'arbitrage'"`

	PriceEUR  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PriceUSD  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	NetProfit decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MarginPct decimal.Decimal `gorm:"type:numeric(6,2);not null"`

	VelocityScore      *decimal.Decimal `gorm:"type:numeric(6,2)"`
	VelocityTier       *int
	HeadacheScore      *decimal.Decimal `gorm:"type:numeric(10,2)"`
	HeadacheTier       *int
	MaturityMultiplier *decimal.Decimal `gorm:"type:numeric(3,2)"`

	Condition           *string `gorm:"type:varchar(8)"`
	RegulationMark      *string `gorm:"type:varchar(4)"`
	RotationRisk        *string `gorm:"type:varchar(16)"`
	TrendClassification *string `gorm:"type:varchar(16)"`
	BundleTier          *string `gorm:"type:varchar(20)"`

	TCGPlayerURL  *string `gorm:"type:text"`
	CardmarketURL *string `gorm:"type:text"`

	CascadeCount int        `gorm:"not null;default:0"`
	ActedOn      bool       `gorm:"not null;default:false"`
	ExpiresAt    *time.Time `gorm:"type:timestamptz;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index:ix_signals_tenant_created,priority:2"`
}

func (Signal) TableName() string {
	return "signals"
}
