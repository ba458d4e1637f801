package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/models"
)

// UpdateKey is the column used to join updates back to the fixtures table.
const UpdateKey = "api_fixture_id"

const (
	fixturesTable = "fixtures"
	archiveTable  = "fixtures_archive"
)

// fixtureColumns lists the canonical fixture columns written by this
// service, in COPY order. created_at/updated_at are managed by the database.
var fixtureColumns = []string{
	"api_fixture_id",
	"api_league_id",
	"season",
	"kickoff_utc",
	"fixture_status",
	"home_team_id",
	"home_team_name",
	"away_team_id",
	"away_team_name",
	"home_team_halftime_goal",
	"away_team_halftime_goal",
	"home_team_fulltime_goal",
	"away_team_fulltime_goal",
	"home_fulltime_result",
	"away_fulltime_result",
	"home_halftime_result",
	"away_halftime_result",
}

// fixtureValues renders one fixture in fixtureColumns order.
func fixtureValues(f *models.Fixture) []interface{} {
	return []interface{}{
		f.FixtureID,
		f.LeagueID,
		f.Season,
		f.KickoffUTC,
		f.Status,
		f.HomeTeamID,
		f.HomeTeamName,
		f.AwayTeamID,
		f.AwayTeamName,
		f.HomeHalftimeGoals,
		f.AwayHalftimeGoals,
		f.HomeFulltimeGoals,
		f.AwayFulltimeGoals,
		f.HomeFulltimeResult,
		f.AwayFulltimeResult,
		f.HomeHalftimeResult,
		f.AwayHalftimeResult,
	}
}

// FixtureRepository handles fixture database operations.
type FixtureRepository struct {
	db *Database
}

// Upsert inserts or updates a single fixture.
func (r *FixtureRepository) Upsert(ctx context.Context, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures (
			api_fixture_id, api_league_id, season, kickoff_utc, fixture_status,
			home_team_id, home_team_name, away_team_id, away_team_name,
			home_team_halftime_goal, away_team_halftime_goal,
			home_team_fulltime_goal, away_team_fulltime_goal,
			home_fulltime_result, away_fulltime_result,
			home_halftime_result, away_halftime_result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (api_fixture_id) DO UPDATE SET
			api_league_id = EXCLUDED.api_league_id,
			season = EXCLUDED.season,
			kickoff_utc = EXCLUDED.kickoff_utc,
			fixture_status = EXCLUDED.fixture_status,
			home_team_id = EXCLUDED.home_team_id,
			home_team_name = EXCLUDED.home_team_name,
			away_team_id = EXCLUDED.away_team_id,
			away_team_name = EXCLUDED.away_team_name,
			home_team_halftime_goal = EXCLUDED.home_team_halftime_goal,
			away_team_halftime_goal = EXCLUDED.away_team_halftime_goal,
			home_team_fulltime_goal = EXCLUDED.home_team_fulltime_goal,
			away_team_fulltime_goal = EXCLUDED.away_team_fulltime_goal,
			home_fulltime_result = EXCLUDED.home_fulltime_result,
			away_fulltime_result = EXCLUDED.away_fulltime_result,
			home_halftime_result = EXCLUDED.home_halftime_result,
			away_halftime_result = EXCLUDED.away_halftime_result,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query, fixtureValues(f)...)
	if err != nil {
		return fmt.Errorf("failed to upsert fixture %d: %w", f.FixtureID, err)
	}

	return nil
}

// ReplaceAll replaces the canonical table contents with the given fixtures
// inside one transaction. The previous contents are preserved in a single
// archival copy taken immediately before the replace.
func (r *FixtureRepository) ReplaceAll(ctx context.Context, fixtures []models.Fixture) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", archiveTable)); err != nil {
		return fmt.Errorf("failed to drop previous archive: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("CREATE TABLE %s AS TABLE %s", archiveTable, fixturesTable)); err != nil {
		return fmt.Errorf("failed to archive fixtures: %w", err)
	}
	log.Info().Str("table", archiveTable).Msg("Archived fixtures before replace")

	if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", fixturesTable)); err != nil {
		return fmt.Errorf("failed to truncate fixtures: %w", err)
	}

	rows := make([][]interface{}, len(fixtures))
	for i := range fixtures {
		rows[i] = fixtureValues(&fixtures[i])
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{fixturesTable}, fixtureColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk-load fixtures: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}

	log.Info().Int64("rows", copied).Msg("Fixtures table replaced")
	return nil
}

// GetByFixtureID retrieves one fixture by its external id.
func (r *FixtureRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (*models.Fixture, error) {
	query := `
		SELECT api_fixture_id, api_league_id, season, kickoff_utc, fixture_status,
		       home_team_id, home_team_name, away_team_id, away_team_name,
		       home_team_halftime_goal, away_team_halftime_goal,
		       home_team_fulltime_goal, away_team_fulltime_goal,
		       home_fulltime_result, away_fulltime_result,
		       home_halftime_result, away_halftime_result
		FROM fixtures
		WHERE api_fixture_id = $1
	`

	var f models.Fixture
	var kickoff time.Time
	err := r.db.Pool.QueryRow(ctx, query, fixtureID).Scan(
		&f.FixtureID, &f.LeagueID, &f.Season, &kickoff, &f.Status,
		&f.HomeTeamID, &f.HomeTeamName, &f.AwayTeamID, &f.AwayTeamName,
		&f.HomeHalftimeGoals, &f.AwayHalftimeGoals,
		&f.HomeFulltimeGoals, &f.AwayFulltimeGoals,
		&f.HomeFulltimeResult, &f.AwayFulltimeResult,
		&f.HomeHalftimeResult, &f.AwayHalftimeResult,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("fixture not found: api_fixture_id=%d", fixtureID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}

	f.KickoffUTC = kickoff.UTC()
	return &f, nil
}

// Count returns the total number of fixtures.
func (r *FixtureRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fixtures`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fixtures: %w", err)
	}

	return count, nil
}
