package repository

import "github.com/Ad0t/PMIS-Allocation/internal/domain/model"

// Option applies a configuration option to the MemoryRepository.
type Option func(*MemoryRepository)

// WithCandidates replaces the seeded candidates.
func WithCandidates(cands []model.Candidate) Option {
	return func(r *MemoryRepository) {
		r.candidates = cloneCandidates(cands)
	}
}

// WithInternships replaces the seeded internships.
func WithInternships(ins []model.Internship) Option {
	return func(r *MemoryRepository) {
		r.internships = make(map[string]model.Internship, len(ins))
		for _, in := range ins {
			r.internships[in.ID] = cloneInternship(in)
		}
	}
}
