package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"tcgradar/internal/models"
	"tcgradar/internal/money"
)

// Trend labels produced by stage 6.
const (
	TrendMomentum    = "Momentum"
	TrendDeclining   = "Declining"
	TrendStable      = "Stable"
	TrendLiquidation = "Liquidation"
)

// Bundle tiers produced by stage 10.
const (
	BundleAlert   = "bundle_alert"
	BundlePartial = "partial_bundle"
	BundleSingle  = "single_card"
)

// Candidate is one listing under evaluation. DailyChange and SellerDensity
// are computed by the caller so the stages themselves stay pure.
type Candidate struct {
	CardID string
	Meta   *models.CardMetadata

	CMPriceEUR  decimal.Decimal
	TCGPriceUSD decimal.Decimal
	Condition   *string

	SellerRating *decimal.Decimal
	SellerSales  *int

	Sales30d       *int
	ActiveListings *int

	DailyChange   decimal.Decimal
	SellerDensity int

	FX        money.FX
	Regime    string
	Forwarder *money.Forwarder
	MinProfit decimal.Decimal

	Now time.Time
}

// Evaluation is the fully annotated record a candidate becomes when every
// stage passes.
type Evaluation struct {
	Condition string
	Breakdown money.Breakdown

	VelocityScore decimal.Decimal
	VelocityTier  int

	Trend string

	MaturityMultiplier decimal.Decimal

	RotationRisk string

	HeadacheScore decimal.Decimal
	HeadacheTier  int

	BundleTier string
}
