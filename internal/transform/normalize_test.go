package transform

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/fixtures-sync/internal/models"
)

func rawRecord(id int64, status, date string, htHome, htAway, ftHome, ftAway interface{}) json.RawMessage {
	body := fmt.Sprintf(`{
		"fixture": {"id": %d, "date": %q, "status": {"short": %q}},
		"league": {"id": 39, "season": 2025},
		"teams": {
			"home": {"id": 40, "name": "Liverpool"},
			"away": {"id": 50, "name": "Manchester City"}
		},
		"score": {
			"halftime": {"home": %v, "away": %v},
			"fulltime": {"home": %v, "away": %v}
		}
	}`, id, date, status, htHome, htAway, ftHome, ftAway)
	return json.RawMessage(body)
}

func TestNormalize_ValidRecord(t *testing.T) {
	raw := []json.RawMessage{
		rawRecord(868549, "FT", "2025-08-16T14:00:00+01:00", 1, 0, 3, 1),
	}

	fixtures, skipped := Normalize(raw)
	require.Len(t, fixtures, 1)
	assert.Zero(t, skipped)

	f := fixtures[0]
	assert.Equal(t, int64(868549), f.FixtureID)
	assert.Equal(t, int64(39), f.LeagueID)
	assert.Equal(t, int32(2025), f.Season)
	assert.Equal(t, models.StatusFinished, f.Status)
	assert.Equal(t, "Liverpool", f.HomeTeamName)
	assert.Equal(t, int32(1), *f.HomeHalftimeGoals)
	assert.Equal(t, int32(3), *f.HomeFulltimeGoals)

	// Kickoff normalized to UTC
	assert.Equal(t, time.UTC, f.KickoffUTC.Location())
	assert.Equal(t, 13, f.KickoffUTC.Hour())
}

func TestNormalize_NullGoalsStayAbsent(t *testing.T) {
	raw := []json.RawMessage{
		rawRecord(1, "NS", "2025-09-01T19:45:00Z", "null", "null", "null", "null"),
	}

	fixtures, skipped := Normalize(raw)
	require.Len(t, fixtures, 1)
	assert.Zero(t, skipped)
	assert.Nil(t, fixtures[0].HomeHalftimeGoals)
	assert.Nil(t, fixtures[0].HomeFulltimeGoals)
}

func TestNormalize_MissingSectionSkipped(t *testing.T) {
	noScore := json.RawMessage(`{
		"fixture": {"id": 7, "date": "2025-09-01T19:45:00Z", "status": {"short": "NS"}},
		"league": {"id": 39, "season": 2025},
		"teams": {"home": {"id": 1, "name": "A"}, "away": {"id": 2, "name": "B"}}
	}`)

	fixtures, skipped := Normalize([]json.RawMessage{noScore})
	assert.Empty(t, fixtures)
	assert.Equal(t, 1, skipped)
}

func TestNormalize_BadTimestampSkipped(t *testing.T) {
	raw := []json.RawMessage{
		rawRecord(8, "NS", "not-a-date", "null", "null", "null", "null"),
	}

	fixtures, skipped := Normalize(raw)
	assert.Empty(t, fixtures)
	assert.Equal(t, 1, skipped)
}

func TestNormalize_UndecodableRecordDoesNotPoisonBatch(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"fixture": [1,2,3]}`),
		rawRecord(9, "NS", "2025-09-01T19:45:00Z", "null", "null", "null", "null"),
	}

	fixtures, skipped := Normalize(raw)
	assert.Len(t, fixtures, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, int64(9), fixtures[0].FixtureID)
}

func TestNormalize_EmptyStatusDefaultsToNotStarted(t *testing.T) {
	raw := []json.RawMessage{
		rawRecord(10, "", "2025-09-01T19:45:00Z", "null", "null", "null", "null"),
	}

	fixtures, skipped := Normalize(raw)
	require.Len(t, fixtures, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, models.StatusNotStarted, fixtures[0].Status)
}
