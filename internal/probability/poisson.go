// Package probability implements the Poisson outcome model: pure functions
// from team scoring rates to calibrated match-outcome distributions. Nothing
// here touches I/O or shared state; every function is safe to call from any
// number of goroutines.
package probability

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument reports a violated numeric precondition (negative rate,
// negative goal count, zero league-average divisor). It is always returned
// before any computation happens.
var ErrInvalidArgument = errors.New("invalid argument")

// PMF returns P(X = k) for X ~ Poisson(lambda).
//
// Computed in log space, exp(k*ln(lambda) - lambda - lnGamma(k+1)), so large
// k cannot overflow the factorial. lambda == 0 is a degenerate distribution:
// all mass on k == 0.
func PMF(lambda float64, k int) (float64, error) {
	if lambda < 0 {
		return 0, fmt.Errorf("%w: lambda must be non-negative, got %v", ErrInvalidArgument, lambda)
	}
	if k < 0 {
		return 0, fmt.Errorf("%w: k must be non-negative, got %d", ErrInvalidArgument, k)
	}

	if lambda == 0 {
		if k == 0 {
			return 1.0, nil
		}
		return 0.0, nil
	}

	lgamma, _ := math.Lgamma(float64(k) + 1)
	logProb := float64(k)*math.Log(lambda) - lambda - lgamma
	return math.Exp(logProb), nil
}

// CDF returns P(X <= k) for X ~ Poisson(lambda). k < 0 yields 0.0.
func CDF(lambda float64, k int) (float64, error) {
	if lambda < 0 {
		return 0, fmt.Errorf("%w: lambda must be non-negative, got %v", ErrInvalidArgument, lambda)
	}
	if k < 0 {
		return 0.0, nil
	}

	cumulative := 0.0
	for i := 0; i <= k; i++ {
		p, err := PMF(lambda, i)
		if err != nil {
			return 0, err
		}
		cumulative += p
	}
	return cumulative, nil
}
