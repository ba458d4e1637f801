package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/merge"
	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
	"github.com/pitchside/fixtures-sync/internal/snapshot"
	"github.com/pitchside/fixtures-sync/internal/transform"
)

// UpdateOptions select what an incremental run refreshes and which snapshots
// it compares against. Zero values mean: refresh the stale fixtures the
// database reports, against the latest full snapshot on disk.
type UpdateOptions struct {
	// FixtureIDs overrides the stale-fixture query with an explicit set.
	FixtureIDs []int64
	// BaseFile overrides the baseline snapshot (a full-mode Parquet file).
	BaseFile string
	// UpdatesFile replays a previously written update-mode Parquet file
	// instead of fetching from the API.
	UpdatesFile string
}

// UpdateSummary reports the outcome of one incremental update run.
type UpdateSummary struct {
	Requested  int
	Fetched    int
	Normalized int
	Skipped    int
	Changed    int
	Applied    int
}

// RunUpdate refreshes the selected fixtures from the API, detects which rows
// actually changed against the baseline snapshot, applies only those to the
// database, and republishes the merged snapshot pair plus a changed-rows
// snapshot.
func (p *Pipeline) RunUpdate(ctx context.Context, opts UpdateOptions) (*UpdateSummary, error) {
	start := time.Now()

	summary, err := p.runUpdate(ctx, opts)
	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordError("pipeline", snapshot.ModeUpdate)
	}
	metrics.RecordPipelineRun(snapshot.ModeUpdate, status, time.Since(start).Seconds())

	return summary, err
}

func (p *Pipeline) runUpdate(ctx context.Context, opts UpdateOptions) (*UpdateSummary, error) {
	summary := &UpdateSummary{}

	updates, err := p.freshFixtures(ctx, opts, summary)
	if err != nil {
		return summary, err
	}
	if len(updates) == 0 {
		log.Info().Msg("No refreshed fixtures obtained; nothing to update")
		return summary, nil
	}

	base, err := p.baseline(opts.BaseFile)
	if err != nil {
		return summary, err
	}

	changedIDs := merge.DetectChanges(base, updates)
	summary.Changed = len(changedIDs)
	if len(changedIDs) == 0 {
		log.Info().Int("refreshed", len(updates)).Msg("No fixture changes detected")
		return summary, nil
	}

	changed := merge.FilterByIDs(updates, changedIDs)

	applied, err := p.db.Updates.ApplyUpdates(ctx, changed, p.cfg.UpdateBatchSize)
	summary.Applied = applied
	if err != nil {
		return summary, fmt.Errorf("failed to apply updates: %w", err)
	}

	// Changed rows only, for audit and replay.
	if _, _, err := snapshot.Write(p.cfg.SnapshotUpdateDir, snapshot.ModeUpdate, changed); err != nil {
		return summary, fmt.Errorf("failed to write update snapshot: %w", err)
	}

	// Republish the merged full snapshot so the next run compares against
	// the post-update state.
	merged := merge.MergeOver(base, changed)
	if _, _, err := snapshot.Write(p.cfg.SnapshotDir, snapshot.ModeFull, merged); err != nil {
		return summary, fmt.Errorf("failed to republish merged snapshot: %w", err)
	}

	log.Info().
		Int("requested", summary.Requested).
		Int("refreshed", len(updates)).
		Int("changed", summary.Changed).
		Int("applied", summary.Applied).
		Msg("Incremental update complete")

	return summary, nil
}

// freshFixtures produces the normalized refreshed rows, either by replaying
// a snapshot file or by fetching the selected fixture ids.
func (p *Pipeline) freshFixtures(ctx context.Context, opts UpdateOptions, summary *UpdateSummary) ([]models.Fixture, error) {
	if opts.UpdatesFile != "" {
		fixtures, err := snapshot.ReadParquet(opts.UpdatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read updates file: %w", err)
		}
		summary.Requested = len(fixtures)
		summary.Fetched = len(fixtures)
		summary.Normalized = len(fixtures)
		return fixtures, nil
	}

	ids := opts.FixtureIDs
	if len(ids) == 0 {
		var err error
		ids, err = p.db.Metadata.StaleFixtureIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to select stale fixtures: %w", err)
		}
	}
	summary.Requested = len(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := p.client.FetchFixturesByIDs(ctx, ids, p.cfg.FetchIDBatchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch aborted for %d fixture ids: %w", len(ids), err)
	}
	summary.Fetched = len(raw)

	fixtures, skipped := transform.Normalize(raw)
	summary.Normalized = len(fixtures)
	summary.Skipped = skipped

	return transform.ComputeResults(fixtures), nil
}

// baseline loads the comparison snapshot, preferring an explicit override.
func (p *Pipeline) baseline(baseFile string) ([]models.Fixture, error) {
	path := baseFile
	if path == "" {
		var err error
		path, err = snapshot.FindLatest(p.cfg.SnapshotDir, snapshot.ModeFull)
		if err != nil {
			return nil, fmt.Errorf("failed to locate baseline snapshot: %w", err)
		}
	}

	base, err := snapshot.ReadParquet(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline snapshot %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("rows", len(base)).Msg("Baseline snapshot loaded")
	return base, nil
}
