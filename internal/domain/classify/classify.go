// Package classify assigns the tri-state outcome to ranked candidates.
package classify

import (
	"math"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Mode selects how tier sizes are derived from the list length.
type Mode string

// Supported modes.
const (
	// ModeFraction sizes each tier as ceil(fraction × N).
	ModeFraction Mode = "fraction"
	// ModeCount sizes each tier as a fixed number of positions.
	ModeCount Mode = "count"
)

// Default thresholds. Score floors are fractions of the maximum score.
const (
	DefaultShortlistFraction = 0.4
	DefaultPromisingFraction = 0.4
	DefaultShortlistCount    = 3
	DefaultPromisingCount    = 3
	DefaultShortlistMinScore = 0.3
	DefaultPromisingMinScore = 0.1
	DefaultMaxScore          = 1.0
)

const fractionEpsilon = 1e-9

// Classifier maps (rank, score, list length) to a Status. Better rank and
// higher score never yield a worse status.
type Classifier struct {
	mode              Mode
	shortlistFraction float64
	promisingFraction float64
	shortlistCount    int
	promisingCount    int
	shortlistMinScore float64
	promisingMinScore float64
	maxScore          float64
}

// New creates a classifier in fraction mode with default thresholds.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		mode:              ModeFraction,
		shortlistFraction: DefaultShortlistFraction,
		promisingFraction: DefaultPromisingFraction,
		shortlistCount:    DefaultShortlistCount,
		promisingCount:    DefaultPromisingCount,
		shortlistMinScore: DefaultShortlistMinScore,
		promisingMinScore: DefaultPromisingMinScore,
		maxScore:          DefaultMaxScore,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.promisingMinScore > c.shortlistMinScore {
		c.promisingMinScore = c.shortlistMinScore
	}
	return c
}

// Mode returns the active mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify returns the status of sc within a list of total entries.
func (c *Classifier) Classify(sc model.ScoredCandidate, total int) model.Status {
	if total <= 0 || sc.Rank < 1 || sc.Rank > total {
		return model.StatusNotRecommended
	}
	shortCut, promCut := c.cuts(total)
	switch {
	case sc.Rank <= shortCut && sc.Score >= c.shortlistMinScore*c.maxScore:
		return model.StatusShortlisted
	case sc.Rank <= promCut && sc.Score >= c.promisingMinScore*c.maxScore:
		return model.StatusPromising
	default:
		return model.StatusNotRecommended
	}
}

// Apply classifies every entry of a ranked list in place.
func (c *Classifier) Apply(entries []model.ScoredCandidate) {
	for i := range entries {
		entries[i].Status = c.Classify(entries[i], len(entries))
	}
}

// cuts returns the last rank of the shortlisted and promising tiers.
func (c *Classifier) cuts(total int) (int, int) {
	var shortCut, promCut int
	switch c.mode {
	case ModeCount:
		shortCut = c.shortlistCount
		promCut = c.shortlistCount + c.promisingCount
	default:
		shortCut = ceilFraction(c.shortlistFraction, total)
		promCut = ceilFraction(c.shortlistFraction+c.promisingFraction, total)
	}
	return min(shortCut, total), min(promCut, total)
}

func ceilFraction(f float64, n int) int {
	if f <= 0 {
		return 0
	}
	return int(math.Ceil(f*float64(n) - fractionEpsilon))
}
