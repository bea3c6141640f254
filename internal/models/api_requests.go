package models

// PredictFromStatsRequest carries raw team averages for a direct evaluation,
// bypassing the aggregator. Pointer fields distinguish "not supplied" (use
// the active configuration's value) from an explicit zero.
type PredictFromStatsRequest struct {
	HomeGoalsForAvg     float64 `json:"home_goals_for_avg" validate:"gte=0"`
	HomeGoalsAgainstAvg float64 `json:"home_goals_against_avg" validate:"gte=0"`
	AwayGoalsForAvg     float64 `json:"away_goals_for_avg" validate:"gte=0"`
	AwayGoalsAgainstAvg float64 `json:"away_goals_against_avg" validate:"gte=0"`

	LeagueAvgGoals *float64 `json:"league_avg_goals,omitempty"`
	HomeAdvantage  *float64 `json:"home_advantage,omitempty"`
	MaxGoals       *int     `json:"max_goals,omitempty" validate:"omitempty,gte=1,lte=25"`
}

// IngestResultsResponse reports how many results were accepted for batching.
type IngestResultsResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
