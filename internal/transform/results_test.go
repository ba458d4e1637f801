package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchside/fixtures-sync/internal/models"
)

func goalPtr(v int32) *int32 { return &v }

func finished(ftHome, ftAway, htHome, htAway *int32) models.Fixture {
	return models.Fixture{
		FixtureID:         1,
		Status:            models.StatusFinished,
		HomeFulltimeGoals: ftHome,
		AwayFulltimeGoals: ftAway,
		HomeHalftimeGoals: htHome,
		AwayHalftimeGoals: htAway,
	}
}

func TestComputeResults_HomeWin(t *testing.T) {
	out := ComputeResults([]models.Fixture{
		finished(goalPtr(3), goalPtr(1), goalPtr(1), goalPtr(1)),
	})

	f := out[0]
	assert.Equal(t, models.ResultWin, *f.HomeFulltimeResult)
	assert.Equal(t, models.ResultLoss, *f.AwayFulltimeResult)
	assert.Equal(t, models.ResultDraw, *f.HomeHalftimeResult)
	assert.Equal(t, models.ResultDraw, *f.AwayHalftimeResult)
}

func TestComputeResults_AwayWin(t *testing.T) {
	out := ComputeResults([]models.Fixture{
		finished(goalPtr(0), goalPtr(2), goalPtr(0), goalPtr(1)),
	})

	f := out[0]
	assert.Equal(t, models.ResultLoss, *f.HomeFulltimeResult)
	assert.Equal(t, models.ResultWin, *f.AwayFulltimeResult)
	assert.Equal(t, models.ResultLoss, *f.HomeHalftimeResult)
	assert.Equal(t, models.ResultWin, *f.AwayHalftimeResult)
}

func TestComputeResults_PairsAreIndependent(t *testing.T) {
	// Fulltime goals present, halftime goals absent: only the fulltime
	// pair gets results.
	out := ComputeResults([]models.Fixture{
		finished(goalPtr(2), goalPtr(2), nil, nil),
	})

	f := out[0]
	require.NotNil(t, f.HomeFulltimeResult)
	assert.Equal(t, models.ResultDraw, *f.HomeFulltimeResult)
	assert.Nil(t, f.HomeHalftimeResult)
	assert.Nil(t, f.AwayHalftimeResult)
}

func TestComputeResults_PartialPairStaysAbsent(t *testing.T) {
	out := ComputeResults([]models.Fixture{
		finished(goalPtr(2), nil, goalPtr(1), goalPtr(0)),
	})

	f := out[0]
	assert.Nil(t, f.HomeFulltimeResult, "One missing goal leaves the pair absent")
	assert.Equal(t, models.ResultWin, *f.HomeHalftimeResult)
}

func TestComputeResults_WalkoverAndAwardedComputeWithoutFinish(t *testing.T) {
	for _, status := range []string{models.StatusWalkover, models.StatusAwarded} {
		f := models.Fixture{
			FixtureID:         2,
			Status:            status,
			HomeFulltimeGoals: goalPtr(3),
			AwayFulltimeGoals: goalPtr(0),
		}

		out := ComputeResults([]models.Fixture{f})
		require.NotNil(t, out[0].HomeFulltimeResult, "status %s should compute results", status)
		assert.Equal(t, models.ResultWin, *out[0].HomeFulltimeResult)
		assert.Nil(t, out[0].HomeHalftimeResult, "No halftime goals, no halftime result")
	}
}

func TestComputeResults_OtherStatusesStayAbsent(t *testing.T) {
	for _, status := range []string{models.StatusNotStarted, models.StatusAbandoned, models.StatusPostponed} {
		f := models.Fixture{
			FixtureID:         3,
			Status:            status,
			HomeFulltimeGoals: goalPtr(1),
			AwayFulltimeGoals: goalPtr(0),
		}

		out := ComputeResults([]models.Fixture{f})
		assert.Nil(t, out[0].HomeFulltimeResult, "status %s should not compute results", status)
	}
}

func TestComputeResults_ResetsStaleDerivedFields(t *testing.T) {
	stale := models.ResultWin
	f := models.Fixture{
		FixtureID:          4,
		Status:             models.StatusPostponed,
		HomeFulltimeResult: &stale,
		AwayFulltimeResult: &stale,
	}

	out := ComputeResults([]models.Fixture{f})
	assert.Nil(t, out[0].HomeFulltimeResult, "Reruns must clear previously derived values")
	assert.Nil(t, out[0].AwayFulltimeResult)
}
