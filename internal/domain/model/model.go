// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// InternshipState is the lifecycle state of a posting.
type InternshipState string

// Internship lifecycle states. Only active postings are allocated.
const (
	InternshipActive InternshipState = "active"
	InternshipClosed InternshipState = "closed"
)

// ParseInternshipState maps loose spellings used by upstream data ("Open",
// "ACTIVE", "Closed") onto the two lifecycle states.
func ParseInternshipState(s string) InternshipState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "open":
		return InternshipActive
	default:
		return InternshipClosed
	}
}

// Candidate is an applicant as seen by the engine. It is read-only for the
// duration of an allocation run.
type Candidate struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Skills        []string `json:"skills"`
	Education     string   `json:"education"`
	Location      string   `json:"location"`
	Projects      string   `json:"projects"`
	Applications  int      `json:"applications"`
	InternshipIDs []string `json:"internship_ids"`
}

// AppliedTo reports whether the candidate applied to the given internship.
func (c Candidate) AppliedTo(internshipID string) bool {
	for _, id := range c.InternshipIDs {
		if id == internshipID {
			return true
		}
	}
	return false
}

// Internship is a posting candidates are matched against.
type Internship struct {
	ID                string          `json:"internship_id"`
	Title             string          `json:"internship_title"`
	Company           string          `json:"company_name"`
	RequiredSkills    []string        `json:"skills_required"`
	EducationKeywords []string        `json:"education_keywords,omitempty"`
	Location          string          `json:"location"`
	Capacity          int             `json:"capacity"`
	State             InternshipState `json:"status"`
}

// Active reports whether the internship is eligible for allocation.
func (i Internship) Active() bool {
	return i.State == InternshipActive
}

// Status is the tri-state classification of a ranked candidate.
type Status string

// Classification outcomes, best first.
const (
	StatusShortlisted    Status = "shortlisted"
	StatusPromising      Status = "promising"
	StatusNotRecommended Status = "not-recommended"
)

// Severity orders statuses so that a lower value is a better outcome.
func (s Status) Severity() int {
	switch s {
	case StatusShortlisted:
		return 0
	case StatusPromising:
		return 1
	default:
		return 2
	}
}

// ScoredCandidate is one row of an allocation result.
type ScoredCandidate struct {
	CandidateID  string  `json:"candidate_id"`
	InternshipID string  `json:"internship_id"`
	Name         string  `json:"name,omitempty"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
	Status       Status  `json:"status"`
}

// AllocationResult is the complete ranked list for one internship. A
// published result is never mutated; the next successful run replaces it.
type AllocationResult struct {
	InternshipID string            `json:"internship_id"`
	Version      uint64            `json:"version"`
	RunID        string            `json:"run_id"`
	Strategy     string            `json:"strategy"`
	ComputedAt   time.Time         `json:"computed_at"`
	Entries      []ScoredCandidate `json:"entries"`
}

// Clone returns a deep copy so readers never share the published slice.
func (r AllocationResult) Clone() AllocationResult {
	out := r
	if r.Entries != nil {
		out.Entries = make([]ScoredCandidate, len(r.Entries))
		copy(out.Entries, r.Entries)
	}
	return out
}

// Shortlist returns the entries classified as shortlisted, in rank order.
func (r AllocationResult) Shortlist() []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Status == StatusShortlisted {
			out = append(out, e)
		}
	}
	return out
}

// AllocationJob asks the worker pool to run one allocation.
type AllocationJob struct {
	InternshipID string
	RequestedAt  time.Time
}

// PublishedEvent announces that a new result became visible.
type PublishedEvent struct {
	InternshipID string    `json:"internship_id"`
	Version      uint64    `json:"version"`
	RunID        string    `json:"run_id"`
	Strategy     string    `json:"strategy"`
	Entries      int       `json:"entries"`
	Shortlisted  int       `json:"shortlisted"`
	PublishedAt  time.Time `json:"published_at"`
}
