package cascade

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"tcgradar/internal/config"
	"tcgradar/internal/models"
	"tcgradar/internal/repository"
)

// Subscription tier ranks. Legacy labels map onto the current ladder and
// anything unrecognized routes as free.
var tierRanks = map[string]int{
	"shop":     4,
	"pro":      3,
	"premium":  3,
	"trader":   2,
	"standard": 2,
	"free":     1,
}

func TierRank(tier string) int {
	if rank, ok := tierRanks[tier]; ok {
		return rank
	}
	return 1
}

// ShouldCascade reports whether an unclaimed signal may move to the next
// subscriber. Acting on a signal blocks cascade permanently; so does
// exhausting the hop budget.
func ShouldCascade(expiresAt *time.Time, actedOn bool, cascadeCount int, now time.Time, cooldown time.Duration, maxCascades int) bool {
	if actedOn || cascadeCount >= maxCascades || expiresAt == nil {
		return false
	}
	return !now.Before(expiresAt.Add(cooldown))
}

// RankSubscribers orders candidate recipients for a signal: tier rank,
// then engagement, then an explicit category match over a catch-all.
// Profiles with a category list that does not contain the signal's
// category are excluded; an empty list matches everything. When demoted
// is set, tier is ignored and the signal routes on engagement alone.
func RankSubscribers(profiles []models.UserProfile, category string, demoted bool) []models.UserProfile {
	type ranked struct {
		profile models.UserProfile
		tier    int
		bonus   int
	}
	var out []ranked
	for _, p := range profiles {
		bonus := 0
		if len(p.CardCategories) > 0 {
			if !contains(p.CardCategories, category) {
				continue
			}
			bonus = 1
		}
		tier := TierRank(p.SubscriptionTier)
		if demoted {
			tier = TierRank("free")
		}
		out = append(out, ranked{profile: p, tier: tier, bonus: bonus})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].tier != out[j].tier {
			return out[i].tier > out[j].tier
		}
		if out[i].profile.EngagementScore != out[j].profile.EngagementScore {
			return out[i].profile.EngagementScore > out[j].profile.EngagementScore
		}
		return out[i].bonus > out[j].bonus
	})
	result := make([]models.UserProfile, 0, len(out))
	for _, r := range out {
		result = append(result, r.profile)
	}
	return result
}

func contains(items []string, val string) bool {
	for _, item := range items {
		if item == val {
			return true
		}
	}
	return false
}

// Controller re-issues expired unclaimed signals to the next subscriber.
type Controller struct {
	repo      repository.Repository
	cfg       config.CascadeConfig
	signalTTL time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func New(repo repository.Repository, cfg config.CascadeConfig, signalTTL time.Duration, log *zap.Logger) *Controller {
	return &Controller{
		repo:      repo,
		cfg:       cfg,
		signalTTL: signalTTL,
		log:       log,
		now:       time.Now,
	}
}

// Sweep finds every cascade-eligible signal and hands each to the highest
// ranked subscriber that is not the current holder. Runs on a short cron
// cadence; each pass is idempotent because re-issue resets expires_at.
func (c *Controller) Sweep(ctx context.Context) error {
	now := c.now().UTC()
	candidates, err := c.repo.AdminListCascadeCandidates(ctx, now, c.cfg.Cooldown, c.cfg.MaxCascades)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	profiles, err := c.repo.ListActiveProfiles(ctx)
	if err != nil {
		return err
	}

	for _, sig := range candidates {
		if !ShouldCascade(sig.ExpiresAt, sig.ActedOn, sig.CascadeCount, now, c.cfg.Cooldown, c.cfg.MaxCascades) {
			continue
		}
		// The last allowed hop routes at the free tier.
		demoted := sig.CascadeCount+1 >= c.cfg.MaxCascades
		next := c.nextHolder(profiles, sig, demoted)
		if next == nil {
			continue
		}
		expires := now.Add(c.signalTTL)
		if err := c.repo.AdminReassignSignal(ctx, sig.ID, next.ID, expires); err != nil {
			c.log.Warn("cascade reassign failed",
				zap.String("signal_id", sig.ID.String()),
				zap.Error(err))
			continue
		}
		c.log.Info("signal cascaded",
			zap.String("signal_id", sig.ID.String()),
			zap.String("from", sig.TenantID.String()),
			zap.String("to", next.ID.String()),
			zap.Int("hop", sig.CascadeCount+1))
	}
	return nil
}

func (c *Controller) nextHolder(profiles []models.UserProfile, sig models.Signal, demoted bool) *models.UserProfile {
	ranked := RankSubscribers(profiles, sig.Category, demoted)
	for _, p := range ranked {
		if p.ID == sig.TenantID {
			continue
		}
		if sig.NetProfit.LessThan(p.MinProfitThreshold) {
			continue
		}
		holder := p
		return &holder
	}
	return nil
}
