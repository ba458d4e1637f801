// Package snapshot persists fixture datasets to durable storage in two
// forms: a row-oriented CSV and a columnar Parquet file. Files are named by
// mode and timestamp and written via a temp path followed by an atomic
// rename, so concurrent readers never observe a partially written file.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
	"github.com/pitchside/fixtures-sync/internal/models"
)

// Snapshot modes.
const (
	ModeFull   = "full"
	ModeUpdate = "update"
)

const timestampLayout = "20060102_150405"

// csvHeader lists the canonical columns in snapshot order.
var csvHeader = []string{
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

// Write persists fixtures to dir in both snapshot forms, returning the CSV
// and Parquet paths. mode must be ModeFull or ModeUpdate.
func Write(dir, mode string, fixtures []models.Fixture) (string, string, error) {
	if mode != ModeFull && mode != ModeUpdate {
		return "", "", fmt.Errorf("unknown snapshot mode: %q", mode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create snapshot dir %s: %w", dir, err)
	}

	ts := time.Now().UTC().Format(timestampLayout)
	csvPath := filepath.Join(dir, fmt.Sprintf("cleaned_fixtures_%s_%s.csv", mode, ts))
	parquetPath := filepath.Join(dir, fmt.Sprintf("cleaned_fixtures_%s_%s.parquet", mode, ts))

	start := time.Now()
	if err := writeCSVAtomic(csvPath, fixtures); err != nil {
		return "", "", err
	}
	metrics.RecordSnapshotWrite("csv", time.Since(start).Seconds())
	log.Info().Str("path", csvPath).Int("rows", len(fixtures)).Msg("Fixtures CSV written")

	start = time.Now()
	if err := writeParquetAtomic(parquetPath, fixtures); err != nil {
		return "", "", err
	}
	metrics.RecordSnapshotWrite("parquet", time.Since(start).Seconds())
	log.Info().Str("path", parquetPath).Int("rows", len(fixtures)).Msg("Fixtures Parquet written")

	return csvPath, parquetPath, nil
}

// ReadParquet loads all fixture rows from a Parquet snapshot.
func ReadParquet(path string) ([]models.Fixture, error) {
	fixtures, err := parquet.ReadFile[models.Fixture](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet snapshot %s: %w", path, err)
	}
	return fixtures, nil
}

// FindLatest returns the most recently modified Parquet snapshot of the
// given mode under dir.
func FindLatest(dir, mode string) (string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("cleaned_fixtures_%s_*.parquet", mode))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s snapshot found under %s", mode, dir)
	}

	latest := ""
	var latestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = m
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no readable %s snapshot found under %s", mode, dir)
	}

	return latest, nil
}

// writeCSVAtomic writes fixtures as CSV to a temp path, then renames it over
// the final path. Null values are encoded as empty cells.
func writeCSVAtomic(path string, fixtures []models.Fixture) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp CSV %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range fixtures {
		if err := w.Write(csvRecord(&fixtures[i])); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp CSV: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename CSV into place: %w", err)
	}

	return nil
}

// writeParquetAtomic writes fixtures as Parquet via a temp path and rename.
func writeParquetAtomic(path string, fixtures []models.Fixture) error {
	tmp := path + ".tmp"

	if err := parquet.WriteFile(tmp, fixtures); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write temp parquet %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename parquet into place: %w", err)
	}

	return nil
}

// csvRecord renders one fixture in csvHeader order.
func csvRecord(f *models.Fixture) []string {
	return []string{
		strconv.FormatInt(f.FixtureID, 10),
		strconv.FormatInt(f.LeagueID, 10),
		strconv.Itoa(int(f.Season)),
		f.KickoffUTC.UTC().Format(time.RFC3339),
		f.Status,
		strconv.FormatInt(f.HomeTeamID, 10),
		f.HomeTeamName,
		strconv.FormatInt(f.AwayTeamID, 10),
		f.AwayTeamName,
		nullableInt(f.HomeHalftimeGoals),
		nullableInt(f.AwayHalftimeGoals),
		nullableInt(f.HomeFulltimeGoals),
		nullableInt(f.AwayFulltimeGoals),
		nullableString(f.HomeFulltimeResult),
		nullableString(f.AwayFulltimeResult),
		nullableString(f.HomeHalftimeResult),
		nullableString(f.AwayHalftimeResult),
	}
}

func nullableInt(v *int32) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(int(*v))
}

func nullableString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
