package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
	"github.com/pitchside/fixtures-sync/internal/snapshot"
	"github.com/pitchside/fixtures-sync/internal/transform"
)

// ExtractSummary reports the outcome of one full extraction run.
type ExtractSummary struct {
	LeagueSeasons int
	EmptyGroups   int
	Fetched       int
	Normalized    int
	Skipped       int
	Stored        int
	CSVPath       string
	ParquetPath   string
}

// RunFullExtraction pulls every fixture for every configured league season,
// normalizes and derives results, writes the timestamped snapshot pair, and
// replaces the canonical fixtures table. A league season that yields no data
// is logged and skipped; it never overwrites stored rows with nothing.
func (p *Pipeline) RunFullExtraction(ctx context.Context) (*ExtractSummary, error) {
	start := time.Now()

	summary, err := p.runFullExtraction(ctx)
	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordError("pipeline", snapshot.ModeFull)
	}
	metrics.RecordPipelineRun(snapshot.ModeFull, status, time.Since(start).Seconds())

	return summary, err
}

func (p *Pipeline) runFullExtraction(ctx context.Context) (*ExtractSummary, error) {
	seasons, err := p.leagueSeasons(ctx)
	if err != nil {
		return nil, err
	}
	if len(seasons) == 0 {
		return nil, fmt.Errorf("no league seasons configured; nothing to extract")
	}

	summary := &ExtractSummary{LeagueSeasons: len(seasons)}

	var all []models.Fixture
	for _, ls := range seasons {
		raw, err := p.client.FetchFixturesByLeagueSeason(ctx, ls.LeagueID, ls.Season)
		if err != nil {
			return summary, fmt.Errorf("fetch aborted for league %d season %d: %w", ls.LeagueID, ls.Season, err)
		}
		if len(raw) == 0 {
			log.Warn().
				Int64("league_id", ls.LeagueID).
				Int32("season", ls.Season).
				Str("league", ls.LeagueName).
				Msg("No data obtained, skipping league season")
			summary.EmptyGroups++
			continue
		}
		summary.Fetched += len(raw)

		fixtures, skipped := transform.Normalize(raw)
		summary.Normalized += len(fixtures)
		summary.Skipped += skipped

		all = append(all, transform.ComputeResults(fixtures)...)

		log.Info().
			Int64("league_id", ls.LeagueID).
			Int32("season", ls.Season).
			Str("league", ls.LeagueName).
			Int("fixtures", len(fixtures)).
			Int("skipped", skipped).
			Msg("League season extracted")
	}

	if len(all) == 0 {
		return summary, fmt.Errorf("extraction produced no fixtures across %d league seasons", len(seasons))
	}

	csvPath, parquetPath, err := snapshot.Write(p.cfg.SnapshotDir, snapshot.ModeFull, all)
	if err != nil {
		return summary, fmt.Errorf("failed to write full snapshot: %w", err)
	}
	summary.CSVPath = csvPath
	summary.ParquetPath = parquetPath

	if err := p.db.Fixtures.ReplaceAll(ctx, all); err != nil {
		return summary, fmt.Errorf("failed to replace fixtures table: %w", err)
	}
	summary.Stored = len(all)
	metrics.FixturesStored.Set(float64(len(all)))

	log.Info().
		Int("league_seasons", summary.LeagueSeasons).
		Int("empty_groups", summary.EmptyGroups).
		Int("fixtures", summary.Stored).
		Int("skipped", summary.Skipped).
		Str("snapshot", parquetPath).
		Msg("Full extraction complete")

	return summary, nil
}

// leagueSeasons loads the metadata rows, through the cache when possible.
func (p *Pipeline) leagueSeasons(ctx context.Context) ([]models.LeagueSeason, error) {
	if rows, ok := p.cache.GetLeagueSeasons(ctx); ok {
		log.Debug().Int("count", len(rows)).Msg("League seasons served from cache")
		return rows, nil
	}

	rows, err := p.db.Metadata.LeagueSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load league seasons: %w", err)
	}

	p.cache.SetLeagueSeasons(ctx, rows)
	return rows, nil
}
