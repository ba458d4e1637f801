package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/fixtures-sync/internal/models"
)

var kickoff = time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)

func fixture(id int64, status string, ko time.Time) models.Fixture {
	return models.Fixture{FixtureID: id, Status: status, KickoffUTC: ko}
}

func TestDetectChanges_CompletionAndReschedule(t *testing.T) {
	base := []models.Fixture{
		fixture(100, models.StatusNotStarted, kickoff),
		fixture(200, models.StatusNotStarted, kickoff),
		fixture(300, models.StatusNotStarted, kickoff),
	}
	// 100 finished, 200 was rescheduled, 300 is untouched.
	update := []models.Fixture{
		fixture(100, models.StatusFinished, kickoff),
		fixture(200, models.StatusNotStarted, kickoff.Add(48*time.Hour)),
		fixture(300, models.StatusNotStarted, kickoff),
	}

	ids := DetectChanges(base, update)
	assert.Equal(t, []int64{100, 200}, ids)
}

func TestDetectChanges_BothReasonsDeduplicate(t *testing.T) {
	base := []models.Fixture{fixture(7, models.StatusNotStarted, kickoff)}
	update := []models.Fixture{fixture(7, models.StatusFinished, kickoff.Add(time.Hour))}

	ids := DetectChanges(base, update)
	assert.Equal(t, []int64{7}, ids, "One fixture hit by both reasons appears once")
}

func TestDetectChanges_InnerJoinIgnoresUnmatchedIDs(t *testing.T) {
	base := []models.Fixture{fixture(1, models.StatusNotStarted, kickoff)}
	update := []models.Fixture{fixture(2, models.StatusFinished, kickoff)}

	ids := DetectChanges(base, update)
	assert.Empty(t, ids, "Ids absent from the base side are not changes")
}

func TestDetectChanges_FinishedStayingFinishedIsNotAChange(t *testing.T) {
	base := []models.Fixture{fixture(5, models.StatusFinished, kickoff)}
	update := []models.Fixture{fixture(5, models.StatusFinished, kickoff)}

	assert.Empty(t, DetectChanges(base, update))
}

func TestDetectChanges_Idempotent(t *testing.T) {
	base := []models.Fixture{fixture(9, models.StatusNotStarted, kickoff)}
	update := []models.Fixture{fixture(9, models.StatusFinished, kickoff)}

	first := DetectChanges(base, update)
	require.Equal(t, []int64{9}, first)

	// After applying the update, the refreshed base agrees with the update
	// and a second pass detects nothing.
	second := DetectChanges(update, update)
	assert.Empty(t, second)
}

func TestFilterByIDs(t *testing.T) {
	fixtures := []models.Fixture{
		fixture(1, models.StatusFinished, kickoff),
		fixture(2, models.StatusNotStarted, kickoff),
		fixture(3, models.StatusFinished, kickoff),
	}

	got := FilterByIDs(fixtures, []int64{3, 1})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].FixtureID)
	assert.Equal(t, int64(3), got[1].FixtureID)
}

func TestMergeOver_ChangedRowWins(t *testing.T) {
	base := []models.Fixture{
		fixture(1, models.StatusNotStarted, kickoff),
		fixture(2, models.StatusNotStarted, kickoff),
	}
	changed := []models.Fixture{fixture(1, models.StatusFinished, kickoff)}

	merged := MergeOver(base, changed)
	require.Len(t, merged, 2)
	assert.Equal(t, models.StatusFinished, merged[0].Status)
	assert.Equal(t, models.StatusNotStarted, merged[1].Status)
}

func TestMergeOver_UnseenChangedRowAppended(t *testing.T) {
	base := []models.Fixture{fixture(1, models.StatusNotStarted, kickoff)}
	changed := []models.Fixture{fixture(99, models.StatusFinished, kickoff)}

	merged := MergeOver(base, changed)
	require.Len(t, merged, 2)
	assert.Equal(t, int64(99), merged[1].FixtureID)
}
