package classify

import "math"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithFractions switches to fraction mode with the given tier sizes.
// Values outside [0, 1] are ignored.
func WithFractions(shortlist, promising float64) Option {
	return func(c *Classifier) {
		if !validFraction(shortlist) || !validFraction(promising) {
			return
		}
		c.mode = ModeFraction
		c.shortlistFraction = shortlist
		c.promisingFraction = promising
	}
}

// WithCounts switches to count mode with fixed tier sizes.
func WithCounts(shortlist, promising int) Option {
	return func(c *Classifier) {
		if shortlist < 0 || promising < 0 {
			return
		}
		c.mode = ModeCount
		c.shortlistCount = shortlist
		c.promisingCount = promising
	}
}

// WithMinScores sets the score floors of the shortlisted and promising
// tiers as fractions of the maximum score. Values outside [0, 1] are ignored.
func WithMinScores(shortlist, promising float64) Option {
	return func(c *Classifier) {
		if !validFraction(shortlist) || !validFraction(promising) {
			return
		}
		c.shortlistMinScore = shortlist
		c.promisingMinScore = promising
	}
}

// WithMaxScore sets the score scale the floors are relative to. It should
// match the scorer's MaxScore.
func WithMaxScore(maxScore float64) Option {
	return func(c *Classifier) {
		if maxScore > 0 && !math.IsInf(maxScore, 0) {
			c.maxScore = maxScore
		}
	}
}

func validFraction(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= 1
}
