// Package merge compares a base snapshot against freshly fetched updates and
// identifies the fixtures whose stored state materially changed. Only two
// transitions count as material: a status transition into finished, and a
// kickoff reschedule. Everything else is captured by a fresh full extraction.
package merge

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
)

// Change reasons.
const (
	ReasonCompleted   = "completed"
	ReasonRescheduled = "rescheduled"
)

// DetectChanges joins base and update snapshots on fixture id (inner join;
// ids absent from either side are ignored) and returns the sorted set of ids
// that changed. A fixture appears at most once regardless of how many
// reasons triggered it.
func DetectChanges(base, update []models.Fixture) []int64 {
	baseByID := make(map[int64]*models.Fixture, len(base))
	for i := range base {
		baseByID[base[i].FixtureID] = &base[i]
	}

	changed := make(map[int64]struct{})
	completed := 0
	rescheduled := 0

	for i := range update {
		upd := &update[i]
		prev, ok := baseByID[upd.FixtureID]
		if !ok {
			continue
		}

		if upd.Status == models.StatusFinished && prev.Status != models.StatusFinished {
			changed[upd.FixtureID] = struct{}{}
			completed++
			metrics.RecordChange(ReasonCompleted)
		}

		if !upd.KickoffUTC.Equal(prev.KickoffUTC) {
			changed[upd.FixtureID] = struct{}{}
			rescheduled++
			metrics.RecordChange(ReasonRescheduled)
		}
	}

	log.Info().Int("count", completed).Msg("Fixtures changed to finished")
	log.Info().Int("count", rescheduled).Msg("Fixtures rescheduled")

	ids := make([]int64, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// FilterByIDs returns the update-side rows restricted to the given id set.
// Tolerant of update rows the base never saw: filtering only consults ids.
func FilterByIDs(fixtures []models.Fixture, ids []int64) []models.Fixture {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	filtered := make([]models.Fixture, 0, len(ids))
	for i := range fixtures {
		if _, ok := want[fixtures[i].FixtureID]; ok {
			filtered = append(filtered, fixtures[i])
		}
	}

	return filtered
}

// MergeOver overlays changed rows on top of the base set, deduplicating by
// fixture id with the changed row winning. Used to republish the full
// snapshot after an update run.
func MergeOver(base, changed []models.Fixture) []models.Fixture {
	replaced := make(map[int64]int, len(changed))
	for i := range changed {
		replaced[changed[i].FixtureID] = i
	}

	merged := make([]models.Fixture, 0, len(base)+len(changed))
	seen := make(map[int64]struct{}, len(base))
	for i := range base {
		id := base[i].FixtureID
		seen[id] = struct{}{}
		if j, ok := replaced[id]; ok {
			merged = append(merged, changed[j])
			continue
		}
		merged = append(merged, base[i])
	}

	// Changed rows with no base counterpart are appended, not dropped.
	for i := range changed {
		if _, ok := seen[changed[i].FixtureID]; !ok {
			merged = append(merged, changed[i])
		}
	}

	return merged
}
