package models

import (
	"time"
)

// Fixture statuses as reported by the API (short codes).
const (
	StatusNotStarted = "NS"
	StatusFinished   = "FT"
	StatusWalkover   = "WO"
	StatusAwarded    = "AWD"
	StatusAbandoned  = "ABD"
	StatusPostponed  = "PST"
)

// Derived result values. A nil result pointer means "absent": the match has
// not produced that result yet, or the goals needed to compute it are missing.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// Fixture is the canonical record for one scheduled or played match.
// FixtureID is the external API identifier and the sole join key between
// any two snapshots of the dataset. Goal and result fields are pointers:
// nil reflects "not yet played" or "unknown" and survives round-trips
// through the Parquet and CSV snapshot forms as well as the database.
type Fixture struct {
	FixtureID    int64     `json:"api_fixture_id" parquet:"api_fixture_id"`
	LeagueID     int64     `json:"api_league_id" parquet:"api_league_id"`
	Season       int32     `json:"season" parquet:"season"`
	KickoffUTC   time.Time `json:"kickoff_utc" parquet:"kickoff_utc,timestamp(millisecond)"`
	Status       string    `json:"fixture_status" parquet:"fixture_status"`
	HomeTeamID   int64     `json:"home_team_id" parquet:"home_team_id"`
	HomeTeamName string    `json:"home_team_name" parquet:"home_team_name"`
	AwayTeamID   int64     `json:"away_team_id" parquet:"away_team_id"`
	AwayTeamName string    `json:"away_team_name" parquet:"away_team_name"`

	HomeHalftimeGoals *int32 `json:"home_team_halftime_goal" parquet:"home_team_halftime_goal,optional"`
	AwayHalftimeGoals *int32 `json:"away_team_halftime_goal" parquet:"away_team_halftime_goal,optional"`
	HomeFulltimeGoals *int32 `json:"home_team_fulltime_goal" parquet:"home_team_fulltime_goal,optional"`
	AwayFulltimeGoals *int32 `json:"away_team_fulltime_goal" parquet:"away_team_fulltime_goal,optional"`

	// Derived fields, computed by the result engine. Never fetched.
	HomeFulltimeResult *string `json:"home_fulltime_result" parquet:"home_fulltime_result,optional"`
	AwayFulltimeResult *string `json:"away_fulltime_result" parquet:"away_fulltime_result,optional"`
	HomeHalftimeResult *string `json:"home_halftime_result" parquet:"home_halftime_result,optional"`
	AwayHalftimeResult *string `json:"away_halftime_result" parquet:"away_halftime_result,optional"`
}

// IsFinished returns true if the fixture reached full time.
func (f *Fixture) IsFinished() bool {
	return f.Status == StatusFinished
}

// IsDecidedOffPitch returns true for walkover and awarded fixtures, whose
// results are computed straight from any present score regardless of status.
func (f *Fixture) IsDecidedOffPitch() bool {
	return f.Status == StatusWalkover || f.Status == StatusAwarded
}

// RawFixture mirrors one element of the API's "response" array. The four
// sections are pointers so the normalizer can detect which are missing;
// a record lacking any of them is skipped with accounting.
type RawFixture struct {
	Fixture *RawFixtureInfo `json:"fixture"`
	League  *RawLeague      `json:"league"`
	Teams   *RawTeams       `json:"teams"`
	Score   *RawScore       `json:"score"`
}

// RawFixtureInfo is the fixture core-info section.
type RawFixtureInfo struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Status struct {
		Short string `json:"short"`
	} `json:"status"`
}

// RawLeague is the league section.
type RawLeague struct {
	ID     int64 `json:"id"`
	Season int32 `json:"season"`
}

// RawTeams is the teams section.
type RawTeams struct {
	Home RawTeam `json:"home"`
	Away RawTeam `json:"away"`
}

// RawTeam is one participant.
type RawTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RawScore is the score section. Goals are pointers because the API reports
// null for matches that have not been played.
type RawScore struct {
	Halftime RawGoals `json:"halftime"`
	Fulltime RawGoals `json:"fulltime"`
}

// RawGoals is one home/away goal pair.
type RawGoals struct {
	Home *int32 `json:"home"`
	Away *int32 `json:"away"`
}
