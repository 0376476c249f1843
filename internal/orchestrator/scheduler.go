package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tcgradar/internal/config"
	"tcgradar/internal/generator"
	"tcgradar/internal/models"
	"tcgradar/internal/repository"
	"tcgradar/internal/scraper"
	"tcgradar/internal/source"
)

// Scheduler is the single long-running poll loop. Every tick it checks
// each job's due predicate and runs the due ones sequentially; one job's
// failure never stops its siblings, and last-poll advances even on
// failure so a broken source cannot hot-loop.
type Scheduler struct {
	repo     repository.Repository
	buySide  source.PriceSource
	sellSide source.PriceSource
	metadata source.MetadataSource
	velocity source.VelocitySource
	scrape   scraper.Scraper
	gen      *generator.Generator

	scanCfg    config.ScanConfig
	sourcesCfg config.SourcesConfig
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	boosts   map[string]time.Time
	lastPoll map[string]time.Time
}

func New(
	repo repository.Repository,
	buySide source.PriceSource,
	sellSide source.PriceSource,
	metadata source.MetadataSource,
	velocity source.VelocitySource,
	scrape scraper.Scraper,
	gen *generator.Generator,
	cfg config.Config,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		repo:       repo,
		buySide:    buySide,
		sellSide:   sellSide,
		metadata:   metadata,
		velocity:   velocity,
		scrape:     scrape,
		gen:        gen,
		scanCfg:    cfg.Scan,
		sourcesCfg: cfg.Sources,
		log:        log,
		now:        time.Now,
		boosts:     map[string]time.Time{},
		lastPoll:   map[string]time.Time{},
	}
}

// Run ticks until the context is cancelled. The tick in flight always
// finishes before Run returns.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.scanCfg.TickInterval)
	defer ticker.Stop()

	s.log.Info("orchestrator started",
		zap.Duration("tick", s.scanCfg.TickInterval),
		zap.Duration("scan_interval", s.scanCfg.Interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("orchestrator stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

type job struct {
	name    string
	cadence time.Duration
	run     func(context.Context) error
}

// Tick prunes expired boosts, then runs every due job.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now().UTC()
	s.pruneBoosts(now)

	jobs := []job{
		{source.KeyJustTCG, s.buyCadence(), s.pollBuySide},
		{source.KeyEBay, s.sourcesCfg.EBay.Cadence, s.pollSellSide},
		{"pokemontcg", s.sourcesCfg.PokemonTCG.Cadence, s.pollMetadata},
		{source.KeyPokeTrace, s.sourcesCfg.PokeTrace.Cadence, s.pollVelocity},
		{"scan", s.scanCfg.Interval, s.runScan},
	}

	for _, j := range jobs {
		if !s.due(j.name, j.cadence, now) {
			continue
		}
		if err := j.run(ctx); err != nil {
			s.log.Warn("job failed", zap.String("job", j.name), zap.Error(err))
		}
		s.markPolled(j.name, now)
	}
}

// BoostCard shortens the buy-side cadence for boost_duration. Boosting an
// already boosted card just resets its revert time.
func (s *Scheduler) BoostCard(cardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boosts[cardID] = s.now().UTC().Add(s.scanCfg.BoostDuration)
}

// BoostedCards returns the card ids currently under boost.
func (s *Scheduler) BoostedCards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.boosts))
	for id := range s.boosts {
		out = append(out, id)
	}
	return out
}

func (s *Scheduler) pruneBoosts(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, revertAt := range s.boosts {
		if !revertAt.After(now) {
			delete(s.boosts, id)
		}
	}
}

// buyCadence shrinks to the boost cadence while any boost is live.
func (s *Scheduler) buyCadence() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.boosts) > 0 {
		return s.scanCfg.BoostCadence
	}
	return s.sourcesCfg.JustTCG.Cadence
}

func (s *Scheduler) due(name string, cadence time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastPoll[name]
	if !ok {
		return true
	}
	return now.Sub(last) >= cadence
}

func (s *Scheduler) markPolled(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPoll[name] = now
}

func (s *Scheduler) pollBuySide(ctx context.Context) error {
	now := s.now().UTC()
	var firstErr error
	for _, setCode := range s.sourcesCfg.SetCodes {
		rows, err := s.buySide.FetchSet(ctx, setCode)
		if err != nil {
			s.log.Warn("buy-side set poll failed", zap.String("set", setCode), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.storeRows(ctx, rows, s.buySide.Name(), now); err != nil {
			return err
		}
	}
	return firstErr
}

func (s *Scheduler) pollSellSide(ctx context.Context) error {
	if s.sourcesCfg.EBay.AppID == "" {
		return nil
	}
	now := s.now().UTC()
	ids, err := s.repo.ListCardIDs(ctx, s.sourcesCfg.EBay.CardLimit)
	if err != nil {
		return err
	}
	var rows []source.PriceRow
	for _, id := range ids {
		row, err := s.sellSide.FetchCard(ctx, id)
		if err != nil {
			s.log.Warn("sell-side card poll failed", zap.String("card_id", id), zap.Error(err))
			continue
		}
		if row != nil {
			rows = append(rows, *row)
		}
	}
	return s.storeRows(ctx, rows, s.sellSide.Name(), now)
}

func (s *Scheduler) pollMetadata(ctx context.Context) error {
	var firstErr error
	for _, setCode := range s.sourcesCfg.SetCodes {
		if info, err := s.metadata.FetchSetInfo(ctx, setCode); err == nil && info != nil {
			s.log.Info("set info",
				zap.String("set", info.Code),
				zap.String("name", info.Name),
				zap.Int("total", info.Total))
		}
		items, err := s.metadata.FetchSet(ctx, setCode)
		if err != nil {
			s.log.Warn("metadata set poll failed", zap.String("set", setCode), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.repo.UpsertCardMetadata(ctx, items); err != nil {
			return err
		}
	}
	return firstErr
}

func (s *Scheduler) pollVelocity(ctx context.Context) error {
	now := s.now().UTC()
	ids, err := s.repo.ListCardIDs(ctx, 0)
	if err != nil {
		return err
	}
	var rows []source.PriceRow
	for _, id := range ids {
		v, err := s.velocity.FetchVelocity(ctx, id)
		if err != nil {
			s.log.Warn("velocity poll failed", zap.String("card_id", id), zap.Error(err))
			continue
		}
		if v == nil {
			continue
		}
		sales := v.Sales30d
		active := v.ActiveListings
		rows = append(rows, source.PriceRow{
			CardID:         id,
			Sales30d:       &sales,
			ActiveListings: &active,
		})
	}
	return s.storeRows(ctx, rows, source.KeyPokeTrace, now)
}

func (s *Scheduler) runScan(ctx context.Context) error {
	profiles, err := s.repo.ListActiveProfiles(ctx)
	if err != nil {
		return err
	}
	return s.gen.RunAndNotify(ctx, profiles)
}

func (s *Scheduler) storeRows(ctx context.Context, rows []source.PriceRow, sourceKey string, now time.Time) error {
	if len(rows) == 0 {
		return nil
	}
	prices := make([]models.MarketPrice, 0, len(rows))
	for _, row := range rows {
		price := row.ToModel(sourceKey)
		s.enrich(ctx, row, &price)
		prices = append(prices, price)
	}
	return s.repo.SaveMarketPrices(ctx, prices, now)
}

// enrich fills missing seller fields from the listing scraper when the row
// carries a listing URL. Scrape failures degrade to the bare quote.
func (s *Scheduler) enrich(ctx context.Context, row source.PriceRow, price *models.MarketPrice) {
	if s.scrape == nil || row.ListingURL == nil || price.SellerID != nil {
		return
	}
	res, err := s.scrape.ScrapeListing(ctx, *row.ListingURL)
	if err != nil {
		s.log.Warn("listing scrape failed", zap.String("card_id", row.CardID), zap.Error(err))
		return
	}
	res.MergeInto(price)
}
