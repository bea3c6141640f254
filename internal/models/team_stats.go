package models

// TeamAverages are a team's rolling goal averages over a lookback window,
// supplied by the stats aggregator.
type TeamAverages struct {
	TeamID          string  `json:"team_id"`
	TeamName        string  `json:"team_name,omitempty"`
	Matches         int     `json:"matches"`
	GoalsForAvg     float64 `json:"goals_for_avg"`
	GoalsAgainstAvg float64 `json:"goals_against_avg"`
}

// LeagueBaseline is the league-wide scoring rate used as the xG divisor.
type LeagueBaseline struct {
	LeagueID     string  `json:"league_id"`
	Matches      int     `json:"matches"`
	AvgGoals     float64 `json:"avg_goals"`
	HomeWinShare float64 `json:"home_win_share"`
}

// Fixture is the minimal match record the prediction path needs: which two
// teams meet and in which league.
type Fixture struct {
	MatchID    string `json:"match_id"`
	LeagueID   string `json:"league_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
}
