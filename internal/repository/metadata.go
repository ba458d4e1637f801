package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/models"
)

// MetadataRepository reads the league/season reference tables that
// parameterize fetches. These tables are never written by this service.
type MetadataRepository struct {
	db *Database
}

// LeagueSeasons returns every league-season combination, in the order
// returned by the source-of-truth query. Full extraction processes groups
// in exactly this order.
func (r *MetadataRepository) LeagueSeasons(ctx context.Context) ([]models.LeagueSeason, error) {
	query := `
		SELECT c.country_name, l.league_name, l.api_league_id, ls.season
		FROM league_seasons ls
		JOIN leagues l ON ls.league_id = l.league_id
		JOIN countries c ON l.country_id = c.country_id
		ORDER BY ls.league_season_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query league seasons: %w", err)
	}
	defer rows.Close()

	var seasons []models.LeagueSeason
	for rows.Next() {
		var ls models.LeagueSeason
		if err := rows.Scan(&ls.CountryName, &ls.LeagueName, &ls.LeagueID, &ls.Season); err != nil {
			return nil, fmt.Errorf("failed to scan league season: %w", err)
		}
		seasons = append(seasons, ls)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating league seasons: %w", err)
	}

	log.Debug().Int("count", len(seasons)).Msg("Retrieved league seasons")
	return seasons, nil
}

// StaleFixtureIDs returns ids of current-season fixtures whose kickoff is
// more than two hours past but whose fulltime goals are still missing.
// These are the fixtures the targeted update pipeline refetches.
func (r *MetadataRepository) StaleFixtureIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT f.api_fixture_id
		FROM fixtures f
		JOIN leagues l ON f.api_league_id = l.api_league_id
		JOIN league_seasons ls ON ls.league_id = l.league_id AND ls.season = f.season
		WHERE f.kickoff_utc < NOW() - INTERVAL '2 hours'
		  AND (f.home_team_fulltime_goal IS NULL OR f.away_team_fulltime_goal IS NULL)
		  AND ls.is_current
		ORDER BY f.api_fixture_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale fixture ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fixture id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixture ids: %w", err)
	}

	log.Info().Int("count", len(ids)).Msg("Identified fixture ids needing updates")
	return ids, nil
}
