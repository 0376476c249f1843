package money

import (
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
)

const (
	RegimeDeMinimis    = "de_minimis"
	RegimePreJuly2026  = "pre_july_2026"
	RegimeIOSSEU       = "ioss_eu"
	RegimePostJuly2026 = "post_july_2026"
	RegimeUKLowValue   = "uk_low_value"
)

// CustomsTable computes import charges on a shipment's landed cost.
type CustomsTable struct {
	USDeMinimisUSD      decimal.Decimal
	USStandardRate      decimal.Decimal
	EUVATRate           decimal.Decimal
	EUFlatDutyEUR       decimal.Decimal
	UKVATRate           decimal.Decimal
	UKLowValueThreshold decimal.Decimal
}

func NewCustomsTable(cfg config.CustomsConfig) CustomsTable {
	return CustomsTable{
		USDeMinimisUSD:      cfg.USDeMinimisUSD,
		USStandardRate:      cfg.USStandardRate,
		EUVATRate:           cfg.EUVATRate,
		EUFlatDutyEUR:       cfg.EUFlatDutyEUR,
		UKVATRate:           cfg.UKVATRate,
		UKLowValueThreshold: cfg.UKLowValueThreshold,
	}
}

// Charge returns the customs cost in USD for a given COGS and regime. The
// EU regimes add a flat duty quoted in EUR, converted with the same
// pessimistic FX as the rest of the kernel.
func (t CustomsTable) Charge(cogsUSD decimal.Decimal, regime string, fx FX) (decimal.Decimal, error) {
	if cogsUSD.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	switch regime {
	case RegimeDeMinimis, RegimePreJuly2026:
		if cogsUSD.LessThan(t.USDeMinimisUSD) {
			return decimal.Zero, nil
		}
		return cogsUSD.Mul(t.USStandardRate).Round(2), nil
	case RegimeIOSSEU, RegimePostJuly2026:
		flat, err := fx.EURToUSD(t.EUFlatDutyEUR)
		if err != nil {
			return decimal.Zero, err
		}
		return cogsUSD.Mul(t.EUVATRate).Add(flat).Round(2), nil
	case RegimeUKLowValue:
		if cogsUSD.GreaterThan(t.UKLowValueThreshold) {
			return cogsUSD.Mul(t.UKVATRate).Round(2), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, ErrUnknownRegime
	}
}
