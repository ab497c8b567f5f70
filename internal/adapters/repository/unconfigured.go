package repository

import (
	"context"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

// Unconfigured is the repository used when no data source is set up. Every
// call fails with ErrUnavailable.
type Unconfigured struct{}

// GetInternship implements Repository.
func (Unconfigured) GetInternship(context.Context, string) (model.Internship, error) {
	return model.Internship{}, ErrUnavailable
}

// ListInternships implements Repository.
func (Unconfigured) ListInternships(context.Context, InternshipFilter) ([]model.Internship, error) {
	return nil, ErrUnavailable
}

// GetCandidates implements Repository.
func (Unconfigured) GetCandidates(context.Context, CandidateFilter) ([]model.Candidate, error) {
	return nil, ErrUnavailable
}
