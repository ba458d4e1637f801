package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the database connection pool and provides access to
// repositories. The canonical fixtures table is mutated only through the
// Fixtures and Updates repositories; everything else is read-only.
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Fixtures *FixtureRepository
	Metadata *MetadataRepository
	Updates  *UpdateRepository
}

// NewDatabase creates a new database connection pool and initializes
// repositories. dsn is a postgres:// connection string.
func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}

	db.Fixtures = &FixtureRepository{db: db}
	db.Metadata = &MetadataRepository{db: db}
	db.Updates = &UpdateRepository{db: db}

	return db, nil
}

// Close closes the database connection pool.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy.
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// EnsureSchema creates the canonical and reference tables if they do not
// exist yet. Safe to run on every start.
func (db *Database) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			country_id   SERIAL PRIMARY KEY,
			country_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS leagues (
			league_id     SERIAL PRIMARY KEY,
			api_league_id BIGINT NOT NULL UNIQUE,
			league_name   TEXT NOT NULL,
			country_id    INT NOT NULL REFERENCES countries(country_id)
		)`,
		`CREATE TABLE IF NOT EXISTS league_seasons (
			league_season_id SERIAL PRIMARY KEY,
			league_id        INT NOT NULL REFERENCES leagues(league_id),
			season           INT NOT NULL,
			is_current       BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (league_id, season)
		)`,
		`CREATE TABLE IF NOT EXISTS fixtures (
			id                       SERIAL PRIMARY KEY,
			api_fixture_id           BIGINT NOT NULL UNIQUE,
			api_league_id            BIGINT NOT NULL,
			season                   INT NOT NULL,
			kickoff_utc              TIMESTAMPTZ NOT NULL,
			fixture_status           TEXT NOT NULL,
			home_team_id             BIGINT NOT NULL,
			home_team_name           TEXT NOT NULL,
			away_team_id             BIGINT NOT NULL,
			away_team_name           TEXT NOT NULL,
			home_team_halftime_goal  INT,
			away_team_halftime_goal  INT,
			home_team_fulltime_goal  INT,
			away_team_fulltime_goal  INT,
			home_fulltime_result     TEXT,
			away_fulltime_result     TEXT,
			home_halftime_result     TEXT,
			away_halftime_result     TEXT,
			created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}

// PoolStats returns database pool statistics.
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}
