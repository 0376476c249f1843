package money

import (
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
)

// FeeSchedule computes per-platform selling fees. Rates come from config
// so marketplace fee changes do not need a rebuild.
type FeeSchedule struct {
	TCGPlayerRate     decimal.Decimal
	TCGPlayerCap      decimal.Decimal
	TCGPlayerFixed    decimal.Decimal
	EBayRate          decimal.Decimal
	CardmarketProRate decimal.Decimal
}

func NewFeeSchedule(cfg config.FeesConfig) FeeSchedule {
	return FeeSchedule{
		TCGPlayerRate:     cfg.TCGPlayerRate,
		TCGPlayerCap:      cfg.TCGPlayerCap,
		TCGPlayerFixed:    cfg.TCGPlayerFixed,
		EBayRate:          cfg.EBayRate,
		CardmarketProRate: cfg.CardmarketProRate,
	}
}

// TCGPlayer is min(P x rate, cap) + fixed.
func (f FeeSchedule) TCGPlayer(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	fee := price.Mul(f.TCGPlayerRate)
	if fee.GreaterThan(f.TCGPlayerCap) {
		fee = f.TCGPlayerCap
	}
	return fee.Add(f.TCGPlayerFixed).Round(2), nil
}

func (f FeeSchedule) EBay(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	return price.Mul(f.EBayRate).Round(2), nil
}

func (f FeeSchedule) CardmarketPro(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	return price.Mul(f.CardmarketProRate).Round(2), nil
}
