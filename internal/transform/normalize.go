package transform

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
)

// Normalize converts raw API fixture records into canonical Fixture records.
// Each record is decoded and validated independently: a record missing any of
// the fixture/teams/score/league sections, or carrying an unparseable kickoff
// timestamp, is skipped and counted, never aborting the batch. Returns the
// valid fixtures and the number of records skipped.
func Normalize(raw []json.RawMessage) ([]models.Fixture, int) {
	fixtures := make([]models.Fixture, 0, len(raw))
	skipped := 0

	for _, record := range raw {
		var rf models.RawFixture
		if err := json.Unmarshal(record, &rf); err != nil {
			log.Warn().Err(err).Str("fixture_id", "unknown").Msg("Skipping undecodable fixture record")
			skipped++
			continue
		}

		if missing := missingSections(&rf); len(missing) > 0 {
			log.Warn().
				Str("fixture_id", rawFixtureID(&rf)).
				Strs("missing", missing).
				Msg("Skipping fixture with missing sections")
			skipped++
			continue
		}

		kickoff, err := time.Parse(time.RFC3339, rf.Fixture.Date)
		if err != nil {
			log.Warn().
				Err(err).
				Str("fixture_id", rawFixtureID(&rf)).
				Str("date", rf.Fixture.Date).
				Msg("Skipping fixture with unparseable kickoff")
			skipped++
			continue
		}

		status := rf.Fixture.Status.Short
		if status == "" {
			status = models.StatusNotStarted
		}

		fixtures = append(fixtures, models.Fixture{
			FixtureID:         rf.Fixture.ID,
			LeagueID:          rf.League.ID,
			Season:            rf.League.Season,
			KickoffUTC:        kickoff.UTC(),
			Status:            status,
			HomeTeamID:        rf.Teams.Home.ID,
			HomeTeamName:      rf.Teams.Home.Name,
			AwayTeamID:        rf.Teams.Away.ID,
			AwayTeamName:      rf.Teams.Away.Name,
			HomeHalftimeGoals: rf.Score.Halftime.Home,
			AwayHalftimeGoals: rf.Score.Halftime.Away,
			HomeFulltimeGoals: rf.Score.Fulltime.Home,
			AwayFulltimeGoals: rf.Score.Fulltime.Away,
		})
	}

	if skipped > 0 {
		log.Info().
			Int("skipped", skipped).
			Int("valid", len(fixtures)).
			Msg("Skipped fixtures due to missing data or errors")
	}
	metrics.RecordNormalized(len(fixtures), skipped)

	return fixtures, skipped
}

// missingSections reports which required payload sections are absent.
func missingSections(rf *models.RawFixture) []string {
	var missing []string
	if rf.Fixture == nil {
		missing = append(missing, "fixture")
	}
	if rf.Teams == nil {
		missing = append(missing, "teams")
	}
	if rf.Score == nil {
		missing = append(missing, "score")
	}
	if rf.League == nil {
		missing = append(missing, "league")
	}
	return missing
}

// rawFixtureID renders the external id for log context, or "unknown".
func rawFixtureID(rf *models.RawFixture) string {
	if rf.Fixture == nil || rf.Fixture.ID == 0 {
		return "unknown"
	}
	return strconv.FormatInt(rf.Fixture.ID, 10)
}
