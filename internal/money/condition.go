package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cardmarket grades mapped to a TCGPlayer sell-side multiplier. The table
// is strictly pessimistic: a grade never sells for more than the next
// better one.
var conditionMultipliers = map[string]decimal.Decimal{
	"MT":  decimal.NewFromInt(1),
	"NM":  decimal.NewFromInt(1),
	"EXC": decimal.RequireFromString("0.85"),
	"GD":  decimal.RequireFromString("0.75"),
	"LP":  decimal.RequireFromString("0.75"),
	"PL":  decimal.RequireFromString("0.60"),
}

var conditionAliases = map[string]string{
	"MINT":           "MT",
	"M":              "MT",
	"NEAR MINT":      "NM",
	"NEARMINT":       "NM",
	"EX":             "EXC",
	"EXCELLENT":      "EXC",
	"GOOD":           "GD",
	"LIGHT PLAYED":   "LP",
	"LIGHTLY PLAYED": "LP",
	"PLAYED":         "PL",
	"POOR":           "PO",
	"DAMAGED":        "PO",
}

// NormalizeCondition maps a raw grade string to its canonical code. The
// empty string normalizes to NM: sources that omit condition quote the
// near-mint market price.
func NormalizeCondition(raw string) string {
	grade := strings.ToUpper(strings.TrimSpace(raw))
	if grade == "" {
		return "NM"
	}
	if canonical, ok := conditionAliases[grade]; ok {
		return canonical
	}
	return grade
}

// ConditionMultiplier returns the sell-side multiplier for a grade. PO
// fails with ErrConditionSuppressed; grades outside the table fail with
// ErrUnknownCondition.
func ConditionMultiplier(raw string) (decimal.Decimal, error) {
	grade := NormalizeCondition(raw)
	if grade == "PO" {
		return decimal.Zero, ErrConditionSuppressed
	}
	mult, ok := conditionMultipliers[grade]
	if !ok {
		return decimal.Zero, ErrUnknownCondition
	}
	return mult, nil
}
