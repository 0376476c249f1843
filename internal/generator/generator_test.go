package generator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcgradar/internal/config"
	"tcgradar/internal/engine"
	"tcgradar/internal/models"
	"tcgradar/internal/money"
	"tcgradar/internal/notify"
	"tcgradar/internal/repository"
	"tcgradar/internal/trend"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func strPtr(s string) *string { return &s }

var genNow = time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

// stubRepo backs a scan entirely from memory. Unimplemented methods panic
// through the embedded nil interface, which is what we want in tests.
type stubRepo struct {
	repository.Repository

	candidates []models.MarketPrice
	metadata   []models.CardMetadata

	inserted []models.Signal
	audits   []models.SignalAudit
}

func (s *stubRepo) ListScanCandidates(ctx context.Context, limit int) ([]models.MarketPrice, error) {
	return s.candidates, nil
}

func (s *stubRepo) ListCardMetadataByIDs(ctx context.Context, cardIDs []string) ([]models.CardMetadata, error) {
	return s.metadata, nil
}

func (s *stubRepo) GetMarketPrice(ctx context.Context, cardID, source string) (*models.MarketPrice, error) {
	return nil, nil
}

func (s *stubRepo) ListPriceHistory(ctx context.Context, cardID, source string, since time.Time) ([]models.PriceHistory, error) {
	return nil, nil
}

func (s *stubRepo) InsertSignalWithAudit(ctx context.Context, sig *models.Signal, audit *models.SignalAudit) error {
	s.inserted = append(s.inserted, *sig)
	if audit != nil {
		s.audits = append(s.audits, *audit)
	}
	return nil
}

type fakeNotifier struct {
	name    string
	batches map[int64][]models.Signal
}

func newFakeNotifier(name string) *fakeNotifier {
	return &fakeNotifier{name: name, batches: map[int64][]models.Signal{}}
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) SendOne(ctx context.Context, channelID int64, sig models.Signal) bool {
	f.batches[channelID] = append(f.batches[channelID], sig)
	return true
}

func (f *fakeNotifier) SendBatch(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	f.batches[channelID] = append(f.batches[channelID], sigs...)
	return true
}

func (f *fakeNotifier) SendDigest(ctx context.Context, channelID int64, sigs []models.Signal) bool {
	return true
}

var _ notify.Notifier = (*fakeNotifier)(nil)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Forex.Buffer = d("0.02")
	cfg.Fees = config.FeesConfig{
		TCGPlayerRate:     d("0.1075"),
		TCGPlayerCap:      d("75.00"),
		TCGPlayerFixed:    d("0.30"),
		EBayRate:          d("0.1325"),
		CardmarketProRate: d("0.05"),
		ShippingUSD:       d("15.00"),
	}
	cfg.Customs = config.CustomsConfig{
		Regime:              money.RegimeDeMinimis,
		USDeMinimisUSD:      d("800.00"),
		USStandardRate:      d("0.025"),
		EUVATRate:           d("0.21"),
		EUFlatDutyEUR:       d("3.00"),
		UKVATRate:           d("0.20"),
		UKLowValueThreshold: d("135.00"),
	}
	cfg.Engine = config.EngineConfig{
		MinProfitThreshold:    d("5.00"),
		SellerDefaultMode:     engine.SellerAssumeDefault,
		MinSellerRating:       d("97.0"),
		MinSellerSales:        100,
		DefaultSellerRating:   d("98.5"),
		DefaultSellerSales:    100,
		VelocityTier1Floor:    d("1.5"),
		VelocityTier2Floor:    d("0.5"),
		FallingKnifeThreshold: d("-0.10"),
		HeadacheTier1Floor:    d("15.00"),
		HeadacheTier2Floor:    d("5.00"),
		BundleAlertSDS:        5,
		BundlePartialMinSDS:   2,
		BundleSingleCardMax:   d("25.00"),
	}
	cfg.Scan = config.ScanConfig{
		MaxSignals: 50,
		SignalTTL:  time.Hour,
	}
	return cfg
}

func testGenerator(repo *stubRepo, notifiers []notify.Notifier) *Generator {
	cfg := testConfig()
	kernel := money.NewKernel(cfg.Fees, cfg.Customs)
	eng := engine.New(cfg.Engine, kernel, true)
	gen := New(repo, eng, trend.New(repo), money.StaticRates{Rate: d("1.08")}, notifiers, cfg, zap.NewNop())
	gen.now = func() time.Time { return genNow }
	return gen
}

func quote(cardID, usd, eur string) models.MarketPrice {
	return models.MarketPrice{
		CardID:    cardID,
		Source:    "justtcg",
		PriceUSD:  decPtr(usd),
		PriceEUR:  decPtr(eur),
		Condition: strPtr("NM"),
	}
}

func meta(cardID, name string) models.CardMetadata {
	return models.CardMetadata{
		CardID:           cardID,
		Name:             name,
		SetCode:          "sv1",
		RegulationMark:   strPtr("H"),
		LegalityStandard: strPtr("Legal"),
	}
}

func TestScanAcceptsProfitableQuote(t *testing.T) {
	repo := &stubRepo{
		candidates: []models.MarketPrice{quote("sv1-25", "100.00", "40.00")},
		metadata:   []models.CardMetadata{meta("sv1-25", "Pikachu ex")},
	}
	gen := testGenerator(repo, nil)

	result, err := gen.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %d (rejected: %v)", len(result.Accepted), result.Rejected)
	}
	acc := result.Accepted[0]
	if !acc.Eval.Breakdown.NetProfitUSD.Equal(d("30.19")) {
		t.Fatalf("net: expected 30.19, got %s", acc.Eval.Breakdown.NetProfitUSD)
	}
	if acc.Eval.Trend != engine.TrendStable {
		t.Fatalf("trend: expected Stable, got %s", acc.Eval.Trend)
	}
	if acc.Eval.BundleTier != engine.BundleSingle {
		t.Fatalf("bundle: expected single_card, got %s", acc.Eval.BundleTier)
	}
	if !acc.FXRate.Equal(d("1.08")) {
		t.Fatalf("fx rate: expected 1.08, got %s", acc.FXRate)
	}
}

func TestScanCountsRotationRejections(t *testing.T) {
	// G rotates 2026-04-10: inside the danger window at the scan date.
	rotating := meta("sv1-25", "Pikachu ex")
	rotating.RegulationMark = strPtr("G")
	repo := &stubRepo{
		candidates: []models.MarketPrice{quote("sv1-25", "100.00", "40.00")},
		metadata:   []models.CardMetadata{rotating},
	}
	gen := testGenerator(repo, nil)

	result, err := gen.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 0 {
		t.Fatalf("expected no accepted signals, got %d", len(result.Accepted))
	}
	if result.Rejected["rotation"] != 1 {
		t.Fatalf("expected 1 rotation rejection, got %v", result.Rejected)
	}
}

func TestScanSkipsQuotesMissingMetadata(t *testing.T) {
	repo := &stubRepo{
		candidates: []models.MarketPrice{quote("sv9-99", "100.00", "40.00")},
	}
	gen := testGenerator(repo, nil)

	result, err := gen.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rejected["variant"] != 1 {
		t.Fatalf("expected 1 variant rejection, got %v", result.Rejected)
	}
}

func TestScanRanksByNetProfit(t *testing.T) {
	repo := &stubRepo{
		candidates: []models.MarketPrice{
			quote("sv1-1", "40.00", "11.00"),
			quote("sv1-2", "50.00", "9.00"),
		},
		metadata: []models.CardMetadata{
			meta("sv1-1", "Low Card"),
			meta("sv1-2", "High Card"),
		},
	}
	gen := testGenerator(repo, nil)

	result, err := gen.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d (rejected: %v)", len(result.Accepted), result.Rejected)
	}
	if result.Accepted[0].CardID != "sv1-2" {
		t.Fatalf("expected sv1-2 ranked first, got %s", result.Accepted[0].CardID)
	}
	if !result.Accepted[0].Eval.Breakdown.NetProfitUSD.Equal(d("19.71")) {
		t.Fatalf("top net: expected 19.71, got %s", result.Accepted[0].Eval.Breakdown.NetProfitUSD)
	}
	if !result.Accepted[1].Eval.Breakdown.NetProfitUSD.Equal(d("8.58")) {
		t.Fatalf("second net: expected 8.58, got %s", result.Accepted[1].Eval.Breakdown.NetProfitUSD)
	}
}

func TestRunAndNotifyPerUserThresholds(t *testing.T) {
	repo := &stubRepo{
		candidates: []models.MarketPrice{
			quote("sv1-1", "40.00", "11.00"),
			quote("sv1-2", "50.00", "9.00"),
		},
		metadata: []models.CardMetadata{
			meta("sv1-1", "Low Card"),
			meta("sv1-2", "High Card"),
		},
	}
	telegram := newFakeNotifier("telegram")
	gen := testGenerator(repo, []notify.Notifier{telegram})

	chatA := int64(1001)
	chatB := int64(1002)
	userA := models.UserProfile{
		ID:                 uuid.New(),
		MinProfitThreshold: d("5.00"),
		MinHeadacheTier:    3,
		TelegramChatID:     &chatA,
	}
	userB := models.UserProfile{
		ID:                 uuid.New(),
		MinProfitThreshold: d("15.00"),
		MinHeadacheTier:    3,
		TelegramChatID:     &chatB,
	}

	if err := gen.RunAndNotify(context.Background(), []models.UserProfile{userA, userB}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A takes both signals, B only the one above its $15 floor.
	if got := len(telegram.batches[chatA]); got != 2 {
		t.Fatalf("user A: expected 2 signals, got %d", got)
	}
	if got := len(telegram.batches[chatB]); got != 1 {
		t.Fatalf("user B: expected 1 signal, got %d", got)
	}
	if telegram.batches[chatB][0].CardID != "sv1-2" {
		t.Fatalf("user B: expected sv1-2, got %s", telegram.batches[chatB][0].CardID)
	}

	if len(repo.inserted) != 3 {
		t.Fatalf("expected 3 stored signals, got %d", len(repo.inserted))
	}
	if len(repo.audits) != 3 {
		t.Fatalf("expected 3 audits, got %d", len(repo.audits))
	}
	for _, audit := range repo.audits {
		if audit.CalculationVersion != calculationVersion {
			t.Fatalf("audit version: expected %s, got %s", calculationVersion, audit.CalculationVersion)
		}
	}

	for _, sig := range telegram.batches[chatA] {
		if sig.TenantID != userA.ID {
			t.Fatal("user A signal carries the wrong tenant")
		}
		if sig.ExpiresAt == nil || !sig.ExpiresAt.Equal(genNow.Add(time.Hour)) {
			t.Fatal("signal expiry should be scan time plus the TTL")
		}
	}
}

func TestRunAndNotifyHeadacheFilter(t *testing.T) {
	repo := &stubRepo{
		candidates: []models.MarketPrice{quote("sv1-1", "40.00", "11.00")},
		metadata:   []models.CardMetadata{meta("sv1-1", "Low Card")},
	}
	telegram := newFakeNotifier("telegram")
	gen := testGenerator(repo, []notify.Notifier{telegram})

	chat := int64(42)
	// Net 8.58 is headache tier 2; a tier-1-only user never sees it.
	strict := models.UserProfile{
		ID:                 uuid.New(),
		MinProfitThreshold: d("5.00"),
		MinHeadacheTier:    1,
		TelegramChatID:     &chat,
	}
	if err := gen.RunAndNotify(context.Background(), []models.UserProfile{strict}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(telegram.batches[chat]) != 0 {
		t.Fatalf("expected no signals past the headache filter, got %d", len(telegram.batches[chat]))
	}
}
