package probability

import (
	"fmt"

	"github.com/pitchside/prediction-api/internal/models"
)

// MatchProbabilities enumerates every scoreline (h, a) with h, a in
// [0, maxGoals], weights each by the product of the two independent Poisson
// pmfs, and accumulates the outcome buckets. Independence between the two
// goal processes is a deliberate simplification of the model.
//
// The cap truncates the tail: the 1X2 sum converges toward 1.0 but may fall
// slightly short for extreme xG with a small cap. At xg <= 5 the mass beyond
// 10 goals per side is below 1e-5, so the default cap of 10 trades O(n²)
// cost against tail coverage. Callers needing tighter sums pass a larger cap.
func MatchProbabilities(homeXG, awayXG float64, maxGoals int) (*models.MatchProbabilities, error) {
	if homeXG < 0 || awayXG < 0 {
		return nil, fmt.Errorf("%w: expected goals must be non-negative, got home=%v away=%v", ErrInvalidArgument, homeXG, awayXG)
	}
	if maxGoals <= 0 {
		maxGoals = DefaultMaxGoals
	}

	homePMF, err := pmfTable(homeXG, maxGoals)
	if err != nil {
		return nil, err
	}
	awayPMF, err := pmfTable(awayXG, maxGoals)
	if err != nil {
		return nil, err
	}

	probs := &models.MatchProbabilities{}
	var totalGoals [5]float64

	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			p := homePMF[h] * awayPMF[a]

			switch {
			case h > a:
				probs.HomeWin += p
			case h == a:
				probs.Draw += p
			default:
				probs.AwayWin += p
			}

			total := h + a
			if total > 4 {
				total = 4
			}
			totalGoals[total] += p

			if h > 0 && a > 0 {
				probs.BothTeamsScore += p
			}

			if h+a > 2 {
				probs.Over25Goals += p
			} else {
				probs.Under25Goals += p
			}
		}
	}

	probs.TotalGoals0 = totalGoals[0]
	probs.TotalGoals1 = totalGoals[1]
	probs.TotalGoals2 = totalGoals[2]
	probs.TotalGoals3 = totalGoals[3]
	probs.TotalGoals4Plus = totalGoals[4]

	return probs, nil
}

// MostLikelyScoreline is the argmax over the same scoreline grid. Ties
// resolve to the first (h, a) in ascending enumeration order: lowest home
// goal count wins, then lowest away goal count.
func MostLikelyScoreline(homeXG, awayXG float64, maxGoals int) (models.Scoreline, error) {
	if homeXG < 0 || awayXG < 0 {
		return models.Scoreline{}, fmt.Errorf("%w: expected goals must be non-negative, got home=%v away=%v", ErrInvalidArgument, homeXG, awayXG)
	}
	if maxGoals <= 0 {
		maxGoals = DefaultMaxGoals
	}

	homePMF, err := pmfTable(homeXG, maxGoals)
	if err != nil {
		return models.Scoreline{}, err
	}
	awayPMF, err := pmfTable(awayXG, maxGoals)
	if err != nil {
		return models.Scoreline{}, err
	}

	best := models.Scoreline{}
	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			p := homePMF[h] * awayPMF[a]
			if p > best.Probability {
				best = models.Scoreline{HomeGoals: h, AwayGoals: a, Probability: p}
			}
		}
	}
	return best, nil
}

// ScorelineProbability is the exact probability of one (h, a) pair.
func ScorelineProbability(homeXG, awayXG float64, homeGoals, awayGoals int) (float64, error) {
	ph, err := PMF(homeXG, homeGoals)
	if err != nil {
		return 0, err
	}
	pa, err := PMF(awayXG, awayGoals)
	if err != nil {
		return 0, err
	}
	return ph * pa, nil
}

// pmfTable precomputes pmf(lambda, 0..maxGoals) so the O(n²) grid reuses
// each marginal instead of recomputing it per cell.
func pmfTable(lambda float64, maxGoals int) ([]float64, error) {
	table := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		p, err := PMF(lambda, k)
		if err != nil {
			return nil, err
		}
		table[k] = p
	}
	return table, nil
}
