package models

import "time"

// MatchResult is one finished match as posted to the ingest endpoint and
// batch-inserted into ClickHouse. The aggregator's rolling averages are
// computed from these rows.
type MatchResult struct {
	MatchID    string  `json:"match_id" validate:"required"`
	LeagueID   string  `json:"league_id" validate:"required"`
	HomeTeamID string  `json:"home_team_id" validate:"required"`
	AwayTeamID string  `json:"away_team_id" validate:"required"`
	HomeGoals  int     `json:"home_goals" validate:"gte=0"`
	AwayGoals  int     `json:"away_goals" validate:"gte=0"`
	PlayedAt   float64 `json:"played_at"` // Unix seconds; zero means "use receipt time"
	Season     string  `json:"season,omitempty"`
}

// ClickHouseResult is the normalized row written to match_results.
type ClickHouseResult struct {
	Timestamp  time.Time
	MatchID    string
	LeagueID   string
	HomeTeamID string
	AwayTeamID string
	HomeGoals  uint8
	AwayGoals  uint8
	Season     string
	RawJSON    string
}
