package models

// LeagueSeason is one row of the league/season source-of-truth query that
// parameterizes full extraction. Read-only reference data.
type LeagueSeason struct {
	CountryName string `json:"country_name"`
	LeagueName  string `json:"league_name"`
	LeagueID    int64  `json:"api_league_id"`
	Season      int32  `json:"season"`
}
