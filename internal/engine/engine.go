package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"tcgradar/internal/config"
	"tcgradar/internal/money"
	"tcgradar/internal/rotation"
)

// SellerDefaultMode values for listings with no scraped seller data.
const (
	SellerAssumeDefault = "assume_default"
	SellerSkip          = "skip"
)

// Engine runs the ten ordered stages over a candidate. The order is
// contractual: later stages read annotations written by earlier ones and
// evaluation stops at the first rejection.
type Engine struct {
	cfg           config.EngineConfig
	kernel        money.Kernel
	bundleEnabled bool
}

func New(cfg config.EngineConfig, kernel money.Kernel, bundleEnabled bool) *Engine {
	return &Engine{cfg: cfg, kernel: kernel, bundleEnabled: bundleEnabled}
}

// Evaluate returns the annotated evaluation, a rejection, or an error.
// Exactly one of the three is meaningful; errors are infrastructure or
// configuration faults, never a per-card verdict.
func (e *Engine) Evaluate(cand Candidate) (*Evaluation, *Rejection, error) {
	eval := &Evaluation{}

	if rej := e.variantCheck(cand); rej != nil {
		return nil, rej, nil
	}
	if rej := e.sellerFloor(cand); rej != nil {
		return nil, rej, nil
	}
	if rej := e.conditionStage(cand, eval); rej != nil {
		return nil, rej, nil
	}
	rej, err := e.profitStage(cand, eval)
	if err != nil {
		return nil, nil, err
	}
	if rej != nil {
		return nil, rej, nil
	}
	e.velocityStage(cand, eval)
	if rej := e.trendStage(cand, eval); rej != nil {
		return nil, rej, nil
	}
	e.maturityStage(cand, eval)
	if rej := e.rotationStage(cand, eval); rej != nil {
		return nil, rej, nil
	}
	rej, err = e.headacheStage(eval)
	if err != nil {
		return nil, nil, err
	}
	if rej != nil {
		return nil, rej, nil
	}
	if rej := e.bundleStage(cand, eval); rej != nil {
		return nil, rej, nil
	}

	return eval, nil, nil
}

func (e *Engine) variantCheck(cand Candidate) *Rejection {
	if cand.CardID == "" {
		return reject(StageVariant, "empty card id")
	}
	if cand.Meta == nil {
		return reject(StageVariant, "no metadata for %s", cand.CardID)
	}
	if cand.CardID != cand.Meta.CardID {
		return reject(StageVariant, "listing id %s does not match metadata id %s", cand.CardID, cand.Meta.CardID)
	}
	return nil
}

func (e *Engine) sellerFloor(cand Candidate) *Rejection {
	rating := cand.SellerRating
	sales := cand.SellerSales
	if rating == nil || sales == nil {
		if e.cfg.SellerDefaultMode == SellerSkip {
			return nil
		}
		defRating := e.cfg.DefaultSellerRating
		defSales := e.cfg.DefaultSellerSales
		rating = &defRating
		sales = &defSales
	}
	if rating.LessThan(e.cfg.MinSellerRating) {
		return reject(StageSeller, "rating %s below %s", rating, e.cfg.MinSellerRating)
	}
	if *sales < e.cfg.MinSellerSales {
		return reject(StageSeller, "lifetime sales %d below %d", *sales, e.cfg.MinSellerSales)
	}
	return nil
}

func (e *Engine) conditionStage(cand Candidate, eval *Evaluation) *Rejection {
	raw := ""
	if cand.Condition != nil {
		raw = *cand.Condition
	}
	eval.Condition = money.NormalizeCondition(raw)
	if _, err := money.ConditionMultiplier(raw); err != nil {
		if errors.Is(err, money.ErrConditionSuppressed) {
			return reject(StageCondition, "grade PO suppressed")
		}
		return reject(StageCondition, "unmappable grade %q", raw)
	}
	return nil
}

func (e *Engine) profitStage(cand Candidate, eval *Evaluation) (*Rejection, error) {
	breakdown, err := e.kernel.NetProfit(money.ProfitInput{
		CMPriceEUR:  cand.CMPriceEUR,
		TCGPriceUSD: cand.TCGPriceUSD,
		FX:          cand.FX,
		Condition:   eval.Condition,
		Regime:      cand.Regime,
		Forwarder:   cand.Forwarder,
	})
	if err != nil {
		return nil, err
	}
	eval.Breakdown = breakdown
	if breakdown.NetProfitUSD.LessThan(cand.MinProfit) {
		return reject(StageProfit, "net %s below threshold %s", breakdown.NetProfitUSD, cand.MinProfit), nil
	}
	return nil, nil
}

func (e *Engine) velocityStage(cand Candidate, eval *Evaluation) {
	score := decimal.NewFromInt(1)
	if cand.Sales30d != nil && cand.ActiveListings != nil && *cand.ActiveListings > 0 {
		score = decimal.NewFromInt(int64(*cand.Sales30d)).
			Div(decimal.NewFromInt(int64(*cand.ActiveListings))).
			Round(2)
	}
	eval.VelocityScore = score
	switch {
	case score.GreaterThan(e.cfg.VelocityTier1Floor):
		eval.VelocityTier = 1
	case score.GreaterThan(e.cfg.VelocityTier2Floor):
		eval.VelocityTier = 2
	default:
		eval.VelocityTier = 3
	}
}

func (e *Engine) trendStage(cand Candidate, eval *Evaluation) *Rejection {
	hot := eval.VelocityScore.GreaterThanOrEqual(e.cfg.VelocityTier1Floor)
	falling := cand.DailyChange.LessThanOrEqual(e.cfg.FallingKnifeThreshold)
	switch {
	case hot && falling:
		return reject(StageTrend, "liquidation: velocity %s with daily change %s", eval.VelocityScore, cand.DailyChange)
	case hot:
		eval.Trend = TrendMomentum
	case falling:
		eval.Trend = TrendDeclining
	default:
		eval.Trend = TrendStable
	}
	return nil
}

func (e *Engine) maturityStage(cand Candidate, eval *Evaluation) {
	mult := decimal.NewFromInt(1)
	release := cand.Meta.SetReleaseDate
	if release != nil && !release.After(cand.Now) {
		ageDays := int(cand.Now.Sub(*release).Hours() / 24)
		switch {
		case ageDays < 30:
			mult = decimal.NewFromInt(1)
		case ageDays < 60:
			mult = decimal.RequireFromString("0.9")
		case ageDays < 90:
			mult = decimal.RequireFromString("0.8")
		default:
			mult = decimal.RequireFromString("0.7")
		}
		if cand.Meta.ReprintRumored && ageDays > 60 {
			mult = mult.Mul(decimal.RequireFromString("0.8")).Round(2)
		}
	}
	eval.MaturityMultiplier = mult
}

func (e *Engine) rotationStage(cand Candidate, eval *Evaluation) *Rejection {
	risk := rotation.Classify(cand.Meta.RegulationMark, cand.Meta.LegalityStandard, cand.Now)
	eval.RotationRisk = risk
	if rotation.AtRisk(risk) {
		return reject(StageRotation, "rotation risk %s", risk)
	}
	return nil
}

func (e *Engine) headacheStage(eval *Evaluation) (*Rejection, error) {
	score, err := headacheScore(eval.Breakdown.NetProfitUSD, 1)
	if err != nil {
		return nil, err
	}
	eval.HeadacheScore = score
	switch {
	case score.GreaterThan(e.cfg.HeadacheTier1Floor):
		eval.HeadacheTier = 1
	case score.GreaterThan(e.cfg.HeadacheTier2Floor):
		eval.HeadacheTier = 2
	default:
		eval.HeadacheTier = 3
	}
	return nil, nil
}

// headacheScore is profit per transaction. The single-card path always
// passes one transaction; bundle paths may pass more.
func headacheScore(netProfit decimal.Decimal, transactions int) (decimal.Decimal, error) {
	if transactions <= 0 {
		return decimal.Zero, money.ErrInvalidArgument
	}
	return netProfit.Div(decimal.NewFromInt(int64(transactions))).Round(2), nil
}

func (e *Engine) bundleStage(cand Candidate, eval *Evaluation) *Rejection {
	sds := cand.SellerDensity
	if !e.bundleEnabled || sds < 1 {
		sds = 1
	}
	switch {
	case sds >= e.cfg.BundleAlertSDS:
		eval.BundleTier = BundleAlert
	case sds >= e.cfg.BundlePartialMinSDS:
		eval.BundleTier = BundlePartial
	default:
		eval.BundleTier = BundleSingle
	}
	if !e.bundleEnabled {
		return nil
	}
	if sds == 1 &&
		cand.TCGPriceUSD.LessThan(e.cfg.BundleSingleCardMax) &&
		!eval.Breakdown.NetProfitUSD.IsPositive() {
		return reject(StageBundle, "low-value single card with no profit")
	}
	return nil
}
