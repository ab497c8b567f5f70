package scoring

import "math"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the signal weights. Negative, non-finite or all-zero
// weights are ignored and the defaults stay in place.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.valid() {
			s.weights = w
		}
	}
}

// WithMaxScore sets the upper bound of the score range.
func WithMaxScore(maxScore float64) Option {
	return func(s *Scorer) {
		if maxScore > 0 && !math.IsInf(maxScore, 0) {
			s.maxScore = maxScore
		}
	}
}
