package probability

import (
	"fmt"

	"github.com/pitchside/prediction-api/internal/models"
)

// Default model parameters, used when the caller supplies none and no
// configuration overrides them.
const (
	DefaultLeagueAvgGoals = 2.5
	DefaultHomeAdvantage  = 0.3
	DefaultMaxGoals       = 10
)

// ExpectedGoals computes one side's xG from its attack rate and the
// opponent's defensive rate, scaled by the league baseline:
//
//	xg = (teamForAvg * oppAgainstAvg) / leagueAvgGoals
//
// The home side gains the full home advantage, the away side concedes half
// of it. The result is clamped at zero. The two sides of a fixture must be
// computed as a matched pair (each using the other's stats) so the zero-sum
// home adjustment stays consistent; FromStats does that.
func ExpectedGoals(teamForAvg, teamAgainstAvg, oppForAvg, oppAgainstAvg, leagueAvgGoals, homeAdvantage float64, isHome bool) (float64, error) {
	for _, v := range []float64{teamForAvg, teamAgainstAvg, oppForAvg, oppAgainstAvg, leagueAvgGoals} {
		if v < 0 {
			return 0, fmt.Errorf("%w: goal averages must be non-negative, got %v", ErrInvalidArgument, v)
		}
	}
	if leagueAvgGoals == 0 {
		return 0, fmt.Errorf("%w: league average goals cannot be zero", ErrInvalidArgument)
	}

	xg := (teamForAvg * oppAgainstAvg) / leagueAvgGoals

	if isHome {
		xg += homeAdvantage
	} else {
		xg -= homeAdvantage * 0.5
	}

	if xg < 0 {
		xg = 0
	}
	return xg, nil
}

// FromStats evaluates a full fixture from raw team averages: the matched xG
// pair and the complete outcome distribution.
func FromStats(homeForAvg, homeAgainstAvg, awayForAvg, awayAgainstAvg, leagueAvgGoals, homeAdvantage float64, maxGoals int) (models.ExpectedGoals, *models.MatchProbabilities, error) {
	homeXG, err := ExpectedGoals(homeForAvg, homeAgainstAvg, awayForAvg, awayAgainstAvg, leagueAvgGoals, homeAdvantage, true)
	if err != nil {
		return models.ExpectedGoals{}, nil, fmt.Errorf("home xg: %w", err)
	}

	awayXG, err := ExpectedGoals(awayForAvg, awayAgainstAvg, homeForAvg, homeAgainstAvg, leagueAvgGoals, homeAdvantage, false)
	if err != nil {
		return models.ExpectedGoals{}, nil, fmt.Errorf("away xg: %w", err)
	}

	probs, err := MatchProbabilities(homeXG, awayXG, maxGoals)
	if err != nil {
		return models.ExpectedGoals{}, nil, err
	}

	return models.ExpectedGoals{HomeXG: homeXG, AwayXG: awayXG}, probs, nil
}
