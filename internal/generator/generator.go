package generator

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tcgradar/internal/config"
	"tcgradar/internal/engine"
	"tcgradar/internal/models"
	"tcgradar/internal/money"
	"tcgradar/internal/notify"
	"tcgradar/internal/repository"
	"tcgradar/internal/source"
	"tcgradar/internal/trend"
)

const calculationVersion = "v1"

// Generator runs the full scan: load candidates, run the ten stages,
// rank the survivors and fan them out per user.
type Generator struct {
	repo      repository.Repository
	engine    *engine.Engine
	trends    *trend.Analyzer
	rates     money.RateProvider
	notifiers []notify.Notifier

	forexCfg  config.ForexConfig
	engineCfg config.EngineConfig
	regime    string
	scanCfg   config.ScanConfig

	log *zap.Logger
	now func() time.Time
}

func New(
	repo repository.Repository,
	eng *engine.Engine,
	trends *trend.Analyzer,
	rates money.RateProvider,
	notifiers []notify.Notifier,
	cfg config.Config,
	log *zap.Logger,
) *Generator {
	return &Generator{
		repo:      repo,
		engine:    eng,
		trends:    trends,
		rates:     rates,
		notifiers: notifiers,
		forexCfg:  cfg.Forex,
		engineCfg: cfg.Engine,
		regime:    cfg.Customs.Regime,
		scanCfg:   cfg.Scan,
		log:       log,
		now:       time.Now,
	}
}

// Accepted is one candidate that survived every stage.
type Accepted struct {
	CardID   string
	Source   string
	Meta     models.CardMetadata
	PriceEUR decimal.Decimal
	PriceUSD decimal.Decimal
	SellerID *string
	Eval     engine.Evaluation
	FXRate   decimal.Decimal
}

// ScanResult carries the ranked signals plus a stage-labelled count of
// everything that fell out along the way.
type ScanResult struct {
	Accepted []Accepted
	Rejected map[string]int
}

// Scan evaluates every quote carrying both a USD and a EUR price against
// the global thresholds. Per-user thresholds are applied at delivery.
func (g *Generator) Scan(ctx context.Context) (*ScanResult, error) {
	now := g.now().UTC()
	rate := g.rates.EURUSD(ctx)
	fx := money.FX{Rate: rate, Buffer: g.forexCfg.Buffer}

	candidates, err := g.repo.ListScanCandidates(ctx, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(candidates))
	for _, row := range candidates {
		ids = append(ids, row.CardID)
	}
	metaRows, err := g.repo.ListCardMetadataByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	metaByID := make(map[string]models.CardMetadata, len(metaRows))
	for _, meta := range metaRows {
		metaByID[meta.CardID] = meta
	}

	density := sellerDensity(candidates)

	result := &ScanResult{Rejected: map[string]int{}}
	for _, row := range candidates {
		cand, err := g.buildCandidate(ctx, row, metaByID, density, fx, now)
		if err != nil {
			g.log.Warn("candidate build failed", zap.String("card_id", row.CardID), zap.Error(err))
			continue
		}

		eval, rej, err := g.engine.Evaluate(cand)
		if err != nil {
			return nil, err
		}
		if rej != nil {
			result.Rejected[rej.Stage]++
			continue
		}
		result.Accepted = append(result.Accepted, Accepted{
			CardID:   row.CardID,
			Source:   row.Source,
			Meta:     *cand.Meta,
			PriceEUR: cand.CMPriceEUR,
			PriceUSD: cand.TCGPriceUSD,
			SellerID: row.SellerID,
			Eval:     *eval,
			FXRate:   rate,
		})
	}

	g.recordSynergy(ctx, result.Accepted)

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].Eval.Breakdown.NetProfitUSD.
			GreaterThan(result.Accepted[j].Eval.Breakdown.NetProfitUSD)
	})
	if limit := g.scanCfg.MaxSignals; limit > 0 && len(result.Accepted) > limit {
		result.Accepted = result.Accepted[:limit]
	}

	g.log.Info("scan complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("accepted", len(result.Accepted)),
		zap.Any("rejected", result.Rejected))
	return result, nil
}

func (g *Generator) buildCandidate(
	ctx context.Context,
	row models.MarketPrice,
	metaByID map[string]models.CardMetadata,
	density map[string]int,
	fx money.FX,
	now time.Time,
) (engine.Candidate, error) {
	cand := engine.Candidate{
		CardID:         row.CardID,
		CMPriceEUR:     deref(row.PriceEUR),
		TCGPriceUSD:    deref(row.PriceUSD),
		Condition:      row.Condition,
		SellerRating:   row.SellerRating,
		SellerSales:    row.SellerSales,
		Sales30d:       row.Sales30d,
		ActiveListings: row.ActiveListings,
		SellerDensity:  1,
		FX:             fx,
		Regime:         g.regime,
		MinProfit:      g.engineCfg.MinProfitThreshold,
		Now:            now,
	}

	if meta, ok := metaByID[row.CardID]; ok {
		metaCopy := meta
		cand.Meta = &metaCopy
	}

	if cand.Sales30d == nil || cand.ActiveListings == nil {
		velocityRow, err := g.repo.GetMarketPrice(ctx, row.CardID, source.KeyPokeTrace)
		if err != nil {
			return engine.Candidate{}, err
		}
		if velocityRow != nil {
			cand.Sales30d = velocityRow.Sales30d
			cand.ActiveListings = velocityRow.ActiveListings
		}
	}

	change, err := g.trends.DailyChange(ctx, row.CardID, row.Source, now)
	if err != nil {
		return engine.Candidate{}, err
	}
	cand.DailyChange = change

	if row.SellerID != nil {
		if count, ok := density[*row.SellerID]; ok {
			cand.SellerDensity = count
		}
	}
	return cand, nil
}

// recordSynergy bumps the co-occurrence count for every pair of accepted
// cards held by the same seller. The counts feed bundle partner lookups.
func (g *Generator) recordSynergy(ctx context.Context, accepted []Accepted) {
	bySeller := map[string][]string{}
	for _, acc := range accepted {
		if acc.SellerID == nil || *acc.SellerID == "" {
			continue
		}
		bySeller[*acc.SellerID] = append(bySeller[*acc.SellerID], acc.CardID)
	}
	for _, cards := range bySeller {
		for i := 0; i < len(cards); i++ {
			for j := i + 1; j < len(cards); j++ {
				if err := g.repo.IncrementSynergy(ctx, cards[i], cards[j], 1); err != nil {
					g.log.Warn("synergy update failed",
						zap.String("card_a", cards[i]),
						zap.String("card_b", cards[j]),
						zap.Error(err))
				}
			}
		}
	}
}

// sellerDensity counts candidate listings per seller across the scan.
func sellerDensity(rows []models.MarketPrice) map[string]int {
	out := map[string]int{}
	for _, row := range rows {
		if row.SellerID != nil && *row.SellerID != "" {
			out[*row.SellerID]++
		}
	}
	return out
}

// RunAndNotify scans once and delivers per user. A failure for one user
// is logged and never aborts the remaining users.
func (g *Generator) RunAndNotify(ctx context.Context, profiles []models.UserProfile) error {
	result, err := g.Scan(ctx)
	if err != nil {
		return err
	}
	if len(result.Accepted) == 0 {
		return nil
	}
	for _, profile := range profiles {
		if err := g.deliverToUser(ctx, profile, result.Accepted); err != nil {
			g.log.Warn("delivery failed",
				zap.String("user_id", profile.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (g *Generator) deliverToUser(ctx context.Context, profile models.UserProfile, accepted []Accepted) error {
	now := g.now().UTC()
	expires := now.Add(g.scanCfg.SignalTTL)

	var signals []models.Signal
	for _, acc := range accepted {
		if acc.Eval.Breakdown.NetProfitUSD.LessThan(profile.MinProfitThreshold) {
			continue
		}
		if profile.MinHeadacheTier > 0 && acc.Eval.HeadacheTier > profile.MinHeadacheTier {
			continue
		}

		sig := g.buildSignal(profile, acc, expires)
		audit, err := buildAudit(acc, g.engineCfg)
		if err != nil {
			return err
		}
		if err := g.repo.InsertSignalWithAudit(ctx, &sig, audit); err != nil {
			return err
		}
		signals = append(signals, sig)
	}
	if len(signals) == 0 {
		return nil
	}

	for _, notifier := range g.notifiers {
		channelID := channelFor(notifier.Name(), profile)
		if channelID == nil {
			continue
		}
		if !notifier.SendBatch(ctx, *channelID, signals) {
			g.log.Warn("notifier batch incomplete",
				zap.String("notifier", notifier.Name()),
				zap.String("user_id", profile.ID.String()))
		}
	}
	return nil
}

func channelFor(notifierName string, profile models.UserProfile) *int64 {
	switch notifierName {
	case "telegram":
		return profile.TelegramChatID
	case "discord":
		return profile.DiscordChannelID
	}
	return nil
}

func (g *Generator) buildSignal(profile models.UserProfile, acc Accepted, expires time.Time) models.Signal {
	eval := acc.Eval
	tcgURL, cmURL := deepLinks(&acc.Meta)

	velocityTier := eval.VelocityTier
	headacheTier := eval.HeadacheTier
	velocityScore := eval.VelocityScore
	headacheScore := eval.HeadacheScore
	maturity := eval.MaturityMultiplier
	condition := eval.Condition
	trendLabel := eval.Trend
	rotationRisk := eval.RotationRisk
	bundleTier := eval.BundleTier

	sig := models.Signal{
		TenantID:            profile.ID,
		CardID:              acc.CardID,
		CardName:            acc.Meta.Name,
		Category:            "arbitrage",
		PriceEUR:            acc.PriceEUR,
		PriceUSD:            acc.PriceUSD,
		NetProfit:           eval.Breakdown.NetProfitUSD,
		MarginPct:           eval.Breakdown.MarginPct,
		VelocityScore:       &velocityScore,
		VelocityTier:        &velocityTier,
		HeadacheScore:       &headacheScore,
		HeadacheTier:        &headacheTier,
		MaturityMultiplier:  &maturity,
		Condition:           &condition,
		RegulationMark:      acc.Meta.RegulationMark,
		RotationRisk:        &rotationRisk,
		TrendClassification: &trendLabel,
		BundleTier:          &bundleTier,
		TCGPlayerURL:        tcgURL,
		CardmarketURL:       cmURL,
		ExpiresAt:           &expires,
	}
	return sig
}

func buildAudit(acc Accepted, engineCfg config.EngineConfig) (*models.SignalAudit, error) {
	sourcePrices, err := json.Marshal(map[string]any{
		"source":     acc.Source,
		"price_eur":  acc.PriceEUR,
		"price_usd":  acc.PriceUSD,
		"forex_rate": acc.FXRate,
	})
	if err != nil {
		return nil, err
	}
	feeCalc, err := json.Marshal(acc.Eval.Breakdown)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(map[string]any{
		"velocity_score":       acc.Eval.VelocityScore,
		"velocity_tier":        acc.Eval.VelocityTier,
		"trend":                acc.Eval.Trend,
		"maturity_multiplier":  acc.Eval.MaturityMultiplier,
		"rotation_risk":        acc.Eval.RotationRisk,
		"headache_score":       acc.Eval.HeadacheScore,
		"headache_tier":        acc.Eval.HeadacheTier,
		"bundle_tier":          acc.Eval.BundleTier,
		"min_profit_threshold": engineCfg.MinProfitThreshold,
		"min_seller_rating":    engineCfg.MinSellerRating,
		"min_seller_sales":     engineCfg.MinSellerSales,
	})
	if err != nil {
		return nil, err
	}
	return &models.SignalAudit{
		SourcePrices:       datatypes.JSON(sourcePrices),
		FeeCalc:            datatypes.JSON(feeCalc),
		SnapshotData:       datatypes.JSON(snapshot),
		CalculationVersion: calculationVersion,
	}, nil
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
