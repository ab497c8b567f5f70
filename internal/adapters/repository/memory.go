package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// MemoryRepository serves a fixed data set from memory. It is seeded with
// the sample data unless options replace it.
type MemoryRepository struct {
	mu          sync.RWMutex
	internships map[string]model.Internship
	candidates  []model.Candidate
}

// NewMemory creates an in-memory repository.
func NewMemory(opts ...Option) *MemoryRepository {
	r := &MemoryRepository{}
	WithInternships(SampleInternships())(r)
	WithCandidates(SampleCandidates())(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetInternship implements Repository.
func (r *MemoryRepository) GetInternship(ctx context.Context, id string) (model.Internship, error) {
	if err := ctx.Err(); err != nil {
		return model.Internship{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.internships[id]
	if !ok {
		return model.Internship{}, fmt.Errorf("internship %s: %w", id, ErrNotFound)
	}
	return cloneInternship(in), nil
}

// ListInternships implements Repository.
func (r *MemoryRepository) ListInternships(ctx context.Context, f InternshipFilter) ([]model.Internship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]model.Internship, 0, len(r.internships))
	for _, in := range r.internships {
		if f.ActiveOnly && !in.Active() {
			continue
		}
		out = append(out, cloneInternship(in))
	}
	r.mu.RUnlock()
	sortInternships(out)
	return out, nil
}

// GetCandidates implements Repository.
func (r *MemoryRepository) GetCandidates(ctx context.Context, f CandidateFilter) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]model.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		if f.InternshipID != "" && !c.AppliedTo(f.InternshipID) {
			continue
		}
		out = append(out, cloneCandidate(c))
	}
	r.mu.RUnlock()
	sortCandidates(out)
	return out, nil
}

// PutInternship inserts or replaces an internship.
func (r *MemoryRepository) PutInternship(in model.Internship) {
	r.mu.Lock()
	r.internships[in.ID] = cloneInternship(in)
	r.mu.Unlock()
}

// PutCandidate inserts or replaces a candidate.
func (r *MemoryRepository) PutCandidate(c model.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.candidates {
		if r.candidates[i].ID == c.ID {
			r.candidates[i] = cloneCandidate(c)
			return
		}
	}
	r.candidates = append(r.candidates, cloneCandidate(c))
}

func cloneInternship(in model.Internship) model.Internship {
	in.RequiredSkills = append([]string(nil), in.RequiredSkills...)
	in.EducationKeywords = append([]string(nil), in.EducationKeywords...)
	return in
}

func cloneCandidate(c model.Candidate) model.Candidate {
	c.Skills = append([]string(nil), c.Skills...)
	c.InternshipIDs = append([]string(nil), c.InternshipIDs...)
	return c
}

func cloneCandidates(in []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(in))
	for i, c := range in {
		out[i] = cloneCandidate(c)
	}
	return out
}
