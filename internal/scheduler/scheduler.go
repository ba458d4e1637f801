package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/config"
	"github.com/pitchside/fixtures-sync/internal/pipeline"
)

// Scheduler runs the two pipeline flows on their own cadences:
// - a nightly full extraction on a cron expression
// - an incremental update on a fixed interval
// The two flows share the database, so runs are serialized with a mutex
// rather than allowed to overlap.
type Scheduler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
	runMu    sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipe *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipe:     pipe,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.FullExtractionCron, func() {
		log.Info().Msg("Running scheduled full extraction...")
		s.runFull(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule full extraction: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.FullExtractionCron).
		Msg("Full extraction scheduled")

	s.ticker = time.NewTicker(s.cfg.UpdateInterval)
	log.Info().
		Dur("interval", s.cfg.UpdateInterval).
		Msg("Incremental update polling started")

	go s.pollUpdates(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollUpdates runs the incremental update flow on every tick.
func (s *Scheduler) pollUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping update polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping update polling")
			return
		case <-s.ticker.C:
			s.runUpdate(ctx)
		}
	}
}

func (s *Scheduler) runFull(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	summary, err := s.pipe.RunFullExtraction(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled full extraction failed")
		return
	}

	log.Info().
		Int("league_seasons", summary.LeagueSeasons).
		Int("fixtures", summary.Stored).
		Dur("duration", time.Since(start)).
		Msg("Scheduled full extraction complete")
}

func (s *Scheduler) runUpdate(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	summary, err := s.pipe.RunUpdate(ctx, pipeline.UpdateOptions{})
	if err != nil {
		log.Error().Err(err).Msg("Scheduled update failed")
		return
	}

	log.Info().
		Int("requested", summary.Requested).
		Int("changed", summary.Changed).
		Int("applied", summary.Applied).
		Dur("duration", time.Since(start)).
		Msg("Scheduled update complete")
}
