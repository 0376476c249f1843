package trend

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tcgradar/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func row(at time.Time, usd, eur string) models.PriceHistory {
	item := models.PriceHistory{RecordedAt: at}
	if usd != "" {
		v := d(usd)
		item.PriceUSD = &v
	}
	if eur != "" {
		v := d(eur)
		item.PriceEUR = &v
	}
	return item
}

var t0 = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

func TestDailyChangeTooFewRows(t *testing.T) {
	if got := DailyChangeFromRows(nil); !got.IsZero() {
		t.Fatalf("no rows: expected 0, got %s", got)
	}
	rows := []models.PriceHistory{row(t0, "10.00", "")}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("single row: expected 0, got %s", got)
	}
	// Rows with both prices null are not usable.
	rows = []models.PriceHistory{
		row(t0, "10.00", ""),
		row(t0.Add(24*time.Hour), "", ""),
	}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("one usable row: expected 0, got %s", got)
	}
}

func TestDailyChangeFlatSeries(t *testing.T) {
	rows := []models.PriceHistory{
		row(t0, "10.00", ""),
		row(t0.Add(24*time.Hour), "10.00", ""),
		row(t0.Add(48*time.Hour), "10.00", ""),
	}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("flat series: expected 0, got %s", got)
	}
}

func TestDailyChangeRisingSeries(t *testing.T) {
	rows := []models.PriceHistory{
		row(t0, "10.00", ""),
		row(t0.Add(24*time.Hour), "11.00", ""),
		row(t0.Add(48*time.Hour), "12.00", ""),
	}
	// slope 1/day over mean 11 = 0.090909
	if got := DailyChangeFromRows(rows); !got.Equal(d("0.090909")) {
		t.Fatalf("rising series: expected 0.090909, got %s", got)
	}
}

func TestDailyChangeFallingSeries(t *testing.T) {
	rows := []models.PriceHistory{
		row(t0, "12.00", ""),
		row(t0.Add(24*time.Hour), "11.00", ""),
		row(t0.Add(48*time.Hour), "10.00", ""),
	}
	if got := DailyChangeFromRows(rows); !got.Equal(d("-0.090909")) {
		t.Fatalf("falling series: expected -0.090909, got %s", got)
	}
}

func TestDailyChangePrefersUSD(t *testing.T) {
	// USD flat, EUR moving: USD wins, so the change is 0.
	rows := []models.PriceHistory{
		row(t0, "10.00", "5.00"),
		row(t0.Add(24*time.Hour), "10.00", "9.00"),
		row(t0.Add(48*time.Hour), "10.00", "20.00"),
	}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("usd preference: expected 0, got %s", got)
	}
}

func TestDailyChangeDegenerateTimestamps(t *testing.T) {
	// All rows at the same instant: regression denominator is 0.
	rows := []models.PriceHistory{
		row(t0, "10.00", ""),
		row(t0, "12.00", ""),
	}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("degenerate x: expected 0, got %s", got)
	}
}

func TestDailyChangeZeroMean(t *testing.T) {
	rows := []models.PriceHistory{
		row(t0, "1.00", ""),
		row(t0.Add(24*time.Hour), "0.00", ""),
		row(t0.Add(48*time.Hour), "-1.00", ""),
	}
	if got := DailyChangeFromRows(rows); !got.IsZero() {
		t.Fatalf("zero mean: expected 0, got %s", got)
	}
}
