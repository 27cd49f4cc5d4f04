package generator

import "math"

// ZScore computes the Z statistic of observing `observed` successes in
// `trials` Bernoulli trials with expected probability p. The pull-rate
// validation suite asserts |z| < 1.96 (95% band) for each tracked
// rarity/treatment frequency.
func ZScore(observed, trials int, p float64) float64 {
	if trials == 0 || p <= 0 || p >= 1 {
		return 0
	}
	n := float64(trials)
	expected := n * p
	return (float64(observed) - expected) / math.Sqrt(expected*(1-p))
}

// WithinBand reports whether the observation sits inside the |z| < bound
// acceptance band
func WithinBand(observed, trials int, p, bound float64) bool {
	return math.Abs(ZScore(observed, trials, p)) < bound
}
