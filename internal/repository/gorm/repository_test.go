package gormrepository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tcgradar/internal/models"
)

func openMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return New(gdb), mock
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestListScanCandidatesUnbounded(t *testing.T) {
	store, mock := openMockStore(t)

	// Anchored so a trailing LIMIT clause fails the match.
	query := regexp.QuoteMeta(`SELECT * FROM "market_prices" WHERE price_usd IS NOT NULL AND price_eur IS NOT NULL ORDER BY price_eur asc`) + "$"
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"card_id", "source"}).
			AddRow("sv1-25", "justtcg").
			AddRow("sv1-2", "justtcg"))

	items, err := store.ListScanCandidates(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListScanCandidatesLimited(t *testing.T) {
	store, mock := openMockStore(t)

	query := regexp.QuoteMeta(`SELECT * FROM "market_prices" WHERE price_usd IS NOT NULL AND price_eur IS NOT NULL ORDER BY price_eur asc`) + ` LIMIT .+$`
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"card_id", "source"}).AddRow("sv1-25", "justtcg"))

	if _, err := store.ListScanCandidates(context.Background(), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveMarketPricesHistoryInSameTx(t *testing.T) {
	store, mock := openMockStore(t)

	sales := 12
	rows := []models.MarketPrice{
		{CardID: "sv1-25", Source: "justtcg", PriceEUR: dp("40.00")},
		{CardID: "sv1-25", Source: "justtcg", PriceEUR: dp("38.50")},
		{CardID: "sv1-30", Source: "poketrace", Sales30d: &sales},
	}

	// One transaction: the deduped upsert, then the history append for the
	// priced quote. The velocity-only row leaves no history.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "market_prices"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "price_history"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	if err := store.SaveMarketPrices(context.Background(), rows, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDedupeMarketPricesLastWins(t *testing.T) {
	rows := []models.MarketPrice{
		{CardID: "sv1-25", Source: "justtcg", PriceEUR: dp("40.00")},
		{CardID: "sv1-2", Source: "justtcg", PriceEUR: dp("11.00")},
		{CardID: "sv1-25", Source: "justtcg", PriceEUR: dp("38.50")},
	}

	out := dedupeMarketPrices(rows)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].CardID != "sv1-25" || out[1].CardID != "sv1-2" {
		t.Fatalf("first-seen order not preserved: %s, %s", out[0].CardID, out[1].CardID)
	}
	if !out[0].PriceEUR.Equal(decimal.RequireFromString("38.50")) {
		t.Fatalf("expected the later listing to win, got %s", out[0].PriceEUR)
	}
}

func TestPriceHistoryRowsSkipVelocityOnly(t *testing.T) {
	sales := 9
	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	rows := []models.MarketPrice{
		{CardID: "sv1-25", Source: "justtcg", PriceEUR: dp("40.00")},
		{CardID: "sv1-25", Source: "ebay", PriceUSD: dp("100.00")},
		{CardID: "sv1-30", Source: "poketrace", Sales30d: &sales},
	}

	history := priceHistoryRows(rows, now)
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	for _, h := range history {
		if !h.RecordedAt.Equal(now) {
			t.Fatalf("history row not stamped with the poll time: %v", h.RecordedAt)
		}
		if h.CardID != "sv1-25" {
			t.Fatalf("velocity-only row leaked into history: %s", h.CardID)
		}
	}
}
