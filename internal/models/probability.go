package models

import "time"

// ExpectedGoals holds the Poisson mean for each side of a fixture.
// Computed fresh per evaluation, never persisted.
type ExpectedGoals struct {
	HomeXG float64 `json:"home_xg"`
	AwayXG float64 `json:"away_xg"`
}

// MatchProbabilities is the full outcome distribution for one fixture.
// HomeWin + Draw + AwayWin converges to 1.0 as the goal cap grows; at the
// default cap of 10 the truncation error is below 1e-5 for realistic xG.
// Over25 + Under25 always sum to exactly 1.0 (they partition the grid).
type MatchProbabilities struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`

	TotalGoals0     float64 `json:"total_goals_0"`
	TotalGoals1     float64 `json:"total_goals_1"`
	TotalGoals2     float64 `json:"total_goals_2"`
	TotalGoals3     float64 `json:"total_goals_3"`
	TotalGoals4Plus float64 `json:"total_goals_4_plus"`

	BothTeamsScore float64 `json:"both_teams_score"`
	Over25Goals    float64 `json:"over_2_5_goals"`
	Under25Goals   float64 `json:"under_2_5_goals"`
}

// Scoreline is a specific (home, away) goal pair with its grid probability.
type Scoreline struct {
	HomeGoals   int     `json:"home_goals"`
	AwayGoals   int     `json:"away_goals"`
	Probability float64 `json:"probability"`
}

// MatchForecast is the API-facing prediction for one fixture.
type MatchForecast struct {
	ForecastID    string             `json:"forecast_id"`
	MatchID       string             `json:"match_id,omitempty"`
	HomeTeam      string             `json:"home_team,omitempty"`
	AwayTeam      string             `json:"away_team,omitempty"`
	ConfigVersion string             `json:"config_version"`
	ExpectedGoals ExpectedGoals      `json:"expected_goals"`
	Probabilities MatchProbabilities `json:"probabilities"`
	LikelyScore   Scoreline          `json:"most_likely_scoreline"`
	Confidence    string             `json:"confidence"` // "high" or "low" vs the config threshold
	GeneratedAt   time.Time          `json:"generated_at"`
}
