package transform

import (
	"github.com/pitchside/fixtures-sync/internal/models"
)

// ComputeResults derives the four categorical result fields for every
// fixture in place and returns the slice.
//
// All derived fields start absent. For walkover and awarded fixtures the
// full-time and half-time results are computed independently from whichever
// goal pairs are present, without requiring a finished status. For finished
// fixtures the same comparison applies, gated per pair on both goals being
// present. Any other status (abandoned, postponed, not started) keeps all
// derived fields absent regardless of goal presence.
func ComputeResults(fixtures []models.Fixture) []models.Fixture {
	for i := range fixtures {
		f := &fixtures[i]

		f.HomeFulltimeResult = nil
		f.AwayFulltimeResult = nil
		f.HomeHalftimeResult = nil
		f.AwayHalftimeResult = nil

		if !f.IsFinished() && !f.IsDecidedOffPitch() {
			continue
		}

		if f.HomeFulltimeGoals != nil && f.AwayFulltimeGoals != nil {
			home, away := compareGoals(*f.HomeFulltimeGoals, *f.AwayFulltimeGoals)
			f.HomeFulltimeResult = &home
			f.AwayFulltimeResult = &away
		}

		if f.HomeHalftimeGoals != nil && f.AwayHalftimeGoals != nil {
			home, away := compareGoals(*f.HomeHalftimeGoals, *f.AwayHalftimeGoals)
			f.HomeHalftimeResult = &home
			f.AwayHalftimeResult = &away
		}
	}

	return fixtures
}

// compareGoals returns the home and away results for one goal pair.
func compareGoals(home, away int32) (string, string) {
	switch {
	case home > away:
		return models.ResultWin, models.ResultLoss
	case home < away:
		return models.ResultLoss, models.ResultWin
	default:
		return models.ResultDraw, models.ResultDraw
	}
}
