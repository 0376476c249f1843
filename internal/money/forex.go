package money

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// FX converts between EUR and USD with a pessimistic buffer applied on both
// legs: buys look more expensive, sale proceeds look smaller. Both legs use
// the same buffered rate so a round trip is stable to within a cent.
type FX struct {
	Rate   decimal.Decimal
	Buffer decimal.Decimal
}

func (f FX) effectiveRate() decimal.Decimal {
	return f.Rate.Mul(one.Add(f.Buffer))
}

func (f FX) EURToUSD(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	if !f.Rate.IsPositive() {
		return decimal.Zero, ErrInvalidArgument
	}
	return amount.Mul(f.effectiveRate()).Round(2), nil
}

func (f FX) USDToEUR(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidArgument
	}
	if !f.Rate.IsPositive() {
		return decimal.Zero, ErrInvalidArgument
	}
	return amount.Div(f.effectiveRate()).Round(2), nil
}
