package orchestrator

import (
	"testing"
	"time"

	"tcgradar/internal/config"
)

var schedNow = time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

func testScheduler() *Scheduler {
	s := &Scheduler{
		scanCfg: config.ScanConfig{
			TickInterval:  5 * time.Second,
			Interval:      30 * time.Minute,
			BoostCadence:  30 * time.Minute,
			BoostDuration: 4 * time.Hour,
		},
		sourcesCfg: config.SourcesConfig{
			JustTCG:    config.SourceConfig{Cadence: 6 * time.Hour},
			EBay:       config.EBayConfig{Cadence: 24 * time.Hour},
			PokemonTCG: config.SourceConfig{Cadence: 12 * time.Hour},
			PokeTrace:  config.SourceConfig{Cadence: 12 * time.Hour},
		},
		now:      func() time.Time { return schedNow },
		boosts:   map[string]time.Time{},
		lastPoll: map[string]time.Time{},
	}
	return s
}

func TestBoostCardSetsRevertTime(t *testing.T) {
	s := testScheduler()
	s.BoostCard("sv1-25")

	want := schedNow.Add(4 * time.Hour)
	if got := s.boosts["sv1-25"]; !got.Equal(want) {
		t.Fatalf("revert time: expected %v, got %v", want, got)
	}
	if ids := s.BoostedCards(); len(ids) != 1 || ids[0] != "sv1-25" {
		t.Fatalf("boosted cards: expected [sv1-25], got %v", ids)
	}
}

func TestBoostCardIdempotentReset(t *testing.T) {
	s := testScheduler()
	s.BoostCard("sv1-25")

	s.now = func() time.Time { return schedNow.Add(time.Hour) }
	s.BoostCard("sv1-25")

	if len(s.boosts) != 1 {
		t.Fatalf("expected one boost entry, got %d", len(s.boosts))
	}
	want := schedNow.Add(time.Hour).Add(4 * time.Hour)
	if got := s.boosts["sv1-25"]; !got.Equal(want) {
		t.Fatalf("re-boost should reset revert time to %v, got %v", want, got)
	}
}

func TestPruneBoosts(t *testing.T) {
	s := testScheduler()
	s.BoostCard("sv1-25")
	s.BoostCard("sv2-7")

	s.pruneBoosts(schedNow.Add(4*time.Hour - time.Second))
	if len(s.boosts) != 2 {
		t.Fatalf("before expiry: expected 2 boosts, got %d", len(s.boosts))
	}

	s.pruneBoosts(schedNow.Add(4 * time.Hour))
	if len(s.boosts) != 0 {
		t.Fatalf("at expiry: expected 0 boosts, got %d", len(s.boosts))
	}
}

func TestBuyCadenceShrinksUnderBoost(t *testing.T) {
	s := testScheduler()
	if got := s.buyCadence(); got != 6*time.Hour {
		t.Fatalf("no boost: expected 6h, got %v", got)
	}

	s.BoostCard("sv1-25")
	if got := s.buyCadence(); got != 30*time.Minute {
		t.Fatalf("with boost: expected 30m, got %v", got)
	}

	s.pruneBoosts(schedNow.Add(5 * time.Hour))
	if got := s.buyCadence(); got != 6*time.Hour {
		t.Fatalf("after revert: expected 6h, got %v", got)
	}
}

func TestDuePredicate(t *testing.T) {
	s := testScheduler()

	if !s.due("scan", 30*time.Minute, schedNow) {
		t.Fatal("never polled job must be due")
	}

	s.markPolled("scan", schedNow)
	if s.due("scan", 30*time.Minute, schedNow.Add(29*time.Minute)) {
		t.Fatal("within cadence: expected not due")
	}
	if !s.due("scan", 30*time.Minute, schedNow.Add(30*time.Minute)) {
		t.Fatal("at cadence boundary: expected due")
	}
}
