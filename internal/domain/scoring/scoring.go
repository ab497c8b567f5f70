// Package scoring computes candidate-to-internship compatibility scores.
package scoring

import (
	"math"
	"strings"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultSkillWeight     = 0.6
	DefaultLocationWeight  = 0.2
	DefaultEducationWeight = 0.2
	DefaultMaxScore        = 1.0
)

// Weights are the relative contributions of each compatibility signal.
type Weights struct {
	Skills    float64
	Location  float64
	Education float64
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{
		Skills:    DefaultSkillWeight,
		Location:  DefaultLocationWeight,
		Education: DefaultEducationWeight,
	}
}

func (w Weights) total() float64 {
	return w.Skills + w.Location + w.Education
}

func (w Weights) valid() bool {
	for _, v := range []float64{w.Skills, w.Location, w.Education} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	t := w.total()
	return t > 0 && !math.IsInf(t, 0)
}

// Breakdown is the per-signal decomposition of a score.
type Breakdown struct {
	SkillOverlap   float64 `json:"skill_overlap"`
	LocationMatch  float64 `json:"location_match"`
	EducationMatch float64 `json:"education_match"`
	Score          float64 `json:"score"`
}

// Scorer is a pure compatibility function. It holds only immutable
// configuration and is safe for concurrent use.
type Scorer struct {
	weights  Weights
	maxScore float64
}

// New creates a scorer with the default weights, then applies options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights:  DefaultWeights(),
		maxScore: DefaultMaxScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxScore is the upper bound of every score this scorer returns.
func (s *Scorer) MaxScore() float64 {
	return s.maxScore
}

// Weights returns the active weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the compatibility of c for in, in [0, MaxScore].
func (s *Scorer) Score(c model.Candidate, in model.Internship) float64 {
	return s.Explain(c, in).Score
}

// Explain returns the score together with the value of each signal.
func (s *Scorer) Explain(c model.Candidate, in model.Internship) Breakdown {
	b := Breakdown{
		SkillOverlap:   SkillOverlap(c.Skills, in.RequiredSkills),
		LocationMatch:  locationMatch(c.Location, in.Location),
		EducationMatch: educationMatch(c.Education+" "+c.Projects, in.EducationKeywords),
	}
	sum := s.weights.Skills*b.SkillOverlap +
		s.weights.Location*b.LocationMatch +
		s.weights.Education*b.EducationMatch
	score := s.maxScore * sum / s.weights.total()
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	b.Score = math.Min(score, s.maxScore)
	return b
}

// SkillOverlap is |have ∩ required| / |required| using case-insensitive,
// trimmed, de-duplicated skill names. It is 0 when nothing is required.
func SkillOverlap(have, required []string) float64 {
	req := normalizeSet(required)
	if len(req) == 0 {
		return 0
	}
	got := normalizeSet(have)
	matched := 0
	for skill := range req {
		if _, ok := got[skill]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(req))
}

func locationMatch(candidate, internship string) float64 {
	a := strings.TrimSpace(candidate)
	b := strings.TrimSpace(internship)
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1
	}
	return 0
}

func educationMatch(text string, keywords []string) float64 {
	kw := normalizeSet(keywords)
	if len(kw) == 0 {
		return 0
	}
	text = strings.ToLower(text)
	found := 0
	for k := range kw {
		if strings.Contains(text, k) {
			found++
		}
	}
	return float64(found) / float64(len(kw))
}

func normalizeSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it == "" {
			continue
		}
		out[it] = struct{}{}
	}
	return out
}
