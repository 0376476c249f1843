package money

import (
	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
)

var hundred = decimal.NewFromInt(100)

// Kernel composes the pure pricing services into the full buy-EU sell-US
// profit breakdown.
type Kernel struct {
	Fees        FeeSchedule
	Customs     CustomsTable
	ShippingUSD decimal.Decimal
}

func NewKernel(fees config.FeesConfig, customs config.CustomsConfig) Kernel {
	return Kernel{
		Fees:        NewFeeSchedule(fees),
		Customs:     NewCustomsTable(customs),
		ShippingUSD: fees.ShippingUSD,
	}
}

// Forwarder models an optional EU package forwarder. InsuranceRate applies
// to the Cardmarket purchase price in EUR.
type Forwarder struct {
	ReceivingFee     decimal.Decimal
	ConsolidationFee decimal.Decimal
	InsuranceRate    decimal.Decimal
}

type ProfitInput struct {
	CMPriceEUR  decimal.Decimal
	TCGPriceUSD decimal.Decimal
	FX          FX
	Condition   string
	Regime      string
	Forwarder   *Forwarder
}

// Breakdown is the itemized result. Every field is quantized to 2dp.
type Breakdown struct {
	ConditionMultiplier decimal.Decimal
	COGSUSD             decimal.Decimal
	AdjustedSellUSD     decimal.Decimal
	TCGFeesUSD          decimal.Decimal
	CustomsUSD          decimal.Decimal
	ShippingUSD         decimal.Decimal
	ForwarderUSD        decimal.Decimal
	RevenueUSD          decimal.Decimal
	NetProfitUSD        decimal.Decimal
	MarginPct           decimal.Decimal
}

// NetProfit computes the full breakdown. The selling fee here is the
// marketplace rate on the adjusted price; the capped TCGPlayer schedule in
// FeeSchedule serves standalone fee quotes.
func (k Kernel) NetProfit(in ProfitInput) (Breakdown, error) {
	if in.CMPriceEUR.IsNegative() || in.TCGPriceUSD.IsNegative() {
		return Breakdown{}, ErrInvalidArgument
	}

	mult, err := ConditionMultiplier(in.Condition)
	if err != nil {
		return Breakdown{}, err
	}

	cogs, err := in.FX.EURToUSD(in.CMPriceEUR)
	if err != nil {
		return Breakdown{}, err
	}

	adjusted := in.TCGPriceUSD.Mul(mult).Round(2)
	tcgFees := adjusted.Mul(k.Fees.TCGPlayerRate).Round(2)

	customs, err := k.Customs.Charge(cogs, in.Regime, in.FX)
	if err != nil {
		return Breakdown{}, err
	}

	forwarder := decimal.Zero
	if in.Forwarder != nil {
		insured, err := in.FX.EURToUSD(in.CMPriceEUR.Mul(in.Forwarder.InsuranceRate))
		if err != nil {
			return Breakdown{}, err
		}
		forwarder = in.Forwarder.ReceivingFee.
			Add(in.Forwarder.ConsolidationFee).
			Add(insured).
			Round(2)
	}

	revenue := adjusted.Sub(tcgFees)
	net := revenue.Sub(cogs).Sub(customs).Sub(k.ShippingUSD).Sub(forwarder).Round(2)

	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = net.Mul(hundred).Div(revenue).Round(2)
	}

	return Breakdown{
		ConditionMultiplier: mult,
		COGSUSD:             cogs,
		AdjustedSellUSD:     adjusted,
		TCGFeesUSD:          tcgFees,
		CustomsUSD:          customs,
		ShippingUSD:         k.ShippingUSD.Round(2),
		ForwarderUSD:        forwarder,
		RevenueUSD:          revenue.Round(2),
		NetProfitUSD:        net,
		MarginPct:           margin,
	}, nil
}
