package optimizer

import "math"

// PoissonCDF returns P(X <= k) for X ~ Poisson(lambda).
func PoissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		return 1
	}
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
		if term < 1e-16 && float64(i) > lambda {
			break
		}
	}
	return math.Min(sum, 1)
}

// DecayLambda picks the Poisson rate from the last normalized review
// score. Weak results resurface sooner.
func DecayLambda(lastScore float64) float64 {
	switch {
	case lastScore < 0.6:
		return 3
	case lastScore < 0.9:
		return 7
	default:
		return 14
	}
}
