package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
)

const tempTable = "tmp_fixture_updates"

// UpdateRepository applies the minimal update set to the canonical fixtures
// table: changed rows are staged into a session-scoped temp table in bounded
// batches and merged column-wise with COALESCE, so an incoming null never
// clobbers an existing stored value. Each batch commits in its own
// transaction; a failure aborts remaining batches but preserves the ones
// already committed, and re-applying the same change set is a no-op in
// effect.
type UpdateRepository struct {
	db *Database
}

// ApplyUpdates stages and applies the changed rows, returning the number of
// rows applied. batchSize bounds the rows staged per transaction.
func (r *UpdateRepository) ApplyUpdates(ctx context.Context, changed []models.Fixture, batchSize int) (int, error) {
	if len(changed) == 0 {
		log.Info().Msg("No changed rows to apply")
		return 0, nil
	}
	if batchSize < 1 {
		batchSize = 100
	}

	// The temp table is scoped to one session, so every step must run on
	// the same pooled connection.
	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	// Intersect the columns we carry with the canonical table's actual
	// schema so the staging table never references a column the target
	// lacks.
	targetCols, err := r.targetColumns(ctx, conn)
	if err != nil {
		return 0, err
	}

	cols := intersectColumns(fixtureColumns, targetCols)

	hasKey := false
	for _, c := range cols {
		if c == UpdateKey {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return 0, fmt.Errorf("update key column %q missing from target table intersection", UpdateKey)
	}

	updateCols := make([]string, 0, len(cols)-1)
	for _, c := range cols {
		if c != UpdateKey {
			updateCols = append(updateCols, c)
		}
	}
	if len(updateCols) == 0 {
		log.Info().Msg("No updatable columns besides the key; nothing to do")
		return 0, nil
	}

	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s AS SELECT %s FROM %s LIMIT 0",
		tempTable, strings.Join(cols, ", "), fixturesTable,
	)
	if _, err := conn.Exec(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("failed to create staging table: %w", err)
	}
	// Best-effort drop; the table dies with the session anyway.
	defer func() {
		if _, err := conn.Exec(context.WithoutCancel(ctx), fmt.Sprintf("DROP TABLE IF EXISTS %s", tempTable)); err != nil {
			log.Debug().Err(err).Msg("Staging table drop skipped (safe to ignore)")
		}
	}()

	setPairs := make([]string, 0, len(updateCols)+1)
	for _, c := range updateCols {
		setPairs = append(setPairs, fmt.Sprintf("%s = COALESCE(src.%s, tgt.%s)", c, c, c))
	}
	setPairs = append(setPairs, "updated_at = NOW()")

	updateSQL := fmt.Sprintf(
		"UPDATE %s AS tgt SET %s FROM %s AS src WHERE tgt.%s = src.%s",
		fixturesTable, strings.Join(setPairs, ", "), tempTable, UpdateKey, UpdateKey,
	)

	applied := 0
	for start := 0; start < len(changed); start += batchSize {
		end := start + batchSize
		if end > len(changed) {
			end = len(changed)
		}
		batch := changed[start:end]

		if err := r.applyBatch(ctx, conn, cols, updateSQL, batch); err != nil {
			// Already-committed batches stay applied; the run is safely
			// re-runnable because the merge is idempotent.
			return applied, fmt.Errorf("failed to apply batch [%d:%d]: %w", start, end, err)
		}

		applied += len(batch)
		log.Info().Int("batch_rows", len(batch)).Int("applied", applied).Msg("Applied update batch")
	}

	metrics.RecordUpdatesApplied(applied)
	return applied, nil
}

// applyBatch stages one bounded batch into the temp table and merges it into
// the canonical table inside a single transaction.
func (r *UpdateRepository) applyBatch(ctx context.Context, conn txConn, cols []string, updateSQL string, batch []models.Fixture) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]interface{}, len(batch))
	for i := range batch {
		rows[i] = columnValues(&batch[i], cols)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempTable}, cols, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to stage rows: %w", err)
	}

	if _, err := tx.Exec(ctx, updateSQL); err != nil {
		return fmt.Errorf("failed to merge staged rows: %w", err)
	}

	// Keep the staging table bounded to one batch at a time.
	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", tempTable)); err != nil {
		return fmt.Errorf("failed to clear staging table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// txConn is the subset of *pgxpool.Conn the batch step needs.
type txConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// targetColumns introspects the canonical table's column set.
func (r *UpdateRepository) targetColumns(ctx context.Context, conn queryRower) ([]string, error) {
	rows, err := conn.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`, fixturesTable)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s columns: %w", fixturesTable, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns (does it exist?)", fixturesTable)
	}

	return cols, nil
}

// queryRower is the subset of *pgxpool.Conn needed for introspection.
type queryRower interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// intersectColumns keeps the columns of ours that also exist in target,
// preserving our order.
func intersectColumns(ours, target []string) []string {
	have := make(map[string]struct{}, len(target))
	for _, c := range target {
		have[c] = struct{}{}
	}

	var out []string
	for _, c := range ours {
		if _, ok := have[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// columnValues renders a fixture restricted to the given columns, in order.
func columnValues(f *models.Fixture, cols []string) []interface{} {
	byName := map[string]interface{}{
		"api_fixture_id":          f.FixtureID,
		"api_league_id":           f.LeagueID,
		"season":                  f.Season,
		"kickoff_utc":             f.KickoffUTC,
		"fixture_status":          f.Status,
		"home_team_id":            f.HomeTeamID,
		"home_team_name":          f.HomeTeamName,
		"away_team_id":            f.AwayTeamID,
		"away_team_name":          f.AwayTeamName,
		"home_team_halftime_goal": f.HomeHalftimeGoals,
		"away_team_halftime_goal": f.AwayHalftimeGoals,
		"home_team_fulltime_goal": f.HomeFulltimeGoals,
		"away_team_fulltime_goal": f.AwayFulltimeGoals,
		"home_fulltime_result":    f.HomeFulltimeResult,
		"away_fulltime_result":    f.AwayFulltimeResult,
		"home_halftime_result":    f.HomeHalftimeResult,
		"away_halftime_result":    f.AwayHalftimeResult,
	}

	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = byName[c]
	}
	return values
}
