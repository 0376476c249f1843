package trend

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"tcgradar/internal/models"
	"tcgradar/internal/repository"
)

const Window = 7 * 24 * time.Hour

// Analyzer turns the append-only price history into a daily fractional
// change: the OLS slope of price over days, normalized by the mean price.
type Analyzer struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Analyzer {
	return &Analyzer{repo: repo}
}

// DailyChange fetches the last 7 days of history for (cardID, source) and
// returns the normalized slope. Degenerate inputs return exactly zero.
func (a *Analyzer) DailyChange(ctx context.Context, cardID, source string, now time.Time) (decimal.Decimal, error) {
	rows, err := a.repo.ListPriceHistory(ctx, cardID, source, now.Add(-Window))
	if err != nil {
		return decimal.Zero, err
	}
	return DailyChangeFromRows(rows), nil
}

// DailyChangeFromRows computes round(slope/mean, 6) over the usable rows.
// A row is usable when it has at least one price; USD wins over EUR.
// Fewer than 2 usable rows, a zero regression denominator, or a zero mean
// all return zero.
func DailyChangeFromRows(rows []models.PriceHistory) decimal.Decimal {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))

	var origin time.Time
	for _, row := range rows {
		price, ok := selectPrice(row)
		if !ok {
			continue
		}
		if origin.IsZero() {
			origin = row.RecordedAt
		}
		xs = append(xs, row.RecordedAt.Sub(origin).Hours()/24)
		ys = append(ys, price)
	}

	if len(xs) < 2 {
		return decimal.Zero
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return decimal.Zero
	}

	mean := stat.Mean(ys, nil)
	if mean == 0 {
		return decimal.Zero
	}

	return decimal.NewFromFloat(slope / mean).Round(6)
}

func selectPrice(row models.PriceHistory) (float64, bool) {
	if row.PriceUSD != nil {
		return row.PriceUSD.InexactFloat64(), true
	}
	if row.PriceEUR != nil {
		return row.PriceEUR.InexactFloat64(), true
	}
	return 0, false
}
