package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

// RefreshReport summarizes one RefreshActive call.
type RefreshReport struct {
	Enqueued []string `json:"enqueued"`
	Pending  []string `json:"pending"`
	Dropped  []string `json:"dropped"`
}

// RefreshActive queues an allocation for every active internship. An
// internship that already has a queued or running refresh is reported as
// pending and not queued twice. Jobs the queue or the pending tracker
// cannot take are dropped.
func (s *Service) RefreshActive(ctx context.Context) (RefreshReport, error) {
	s.mu.RLock()
	started, jobs, deduper, log := s.started, s.jobs, s.deduper, s.logger
	s.mu.RUnlock()
	if !started {
		return RefreshReport{}, ErrNotStarted
	}

	start := time.Now()
	internships, err := s.repo.ListInternships(ctx, repository.InternshipFilter{ActiveOnly: true})
	observeRepository("list_internships", start)
	if err != nil {
		return RefreshReport{}, fmt.Errorf("list active internships: %w", err)
	}

	report := RefreshReport{Enqueued: []string{}, Pending: []string{}, Dropped: []string{}}
	for _, in := range internships {
		seen, err := deduper.SeenAndRecord(ctx, in.ID)
		if err != nil {
			report.Dropped = append(report.Dropped, in.ID)
			continue
		}
		if seen {
			report.Pending = append(report.Pending, in.ID)
			continue
		}
		if !jobs.Enqueue(ctx, model.AllocationJob{InternshipID: in.ID, RequestedAt: time.Now().UTC()}) {
			deduper.Unrecord(ctx, in.ID)
			report.Dropped = append(report.Dropped, in.ID)
			continue
		}
		report.Enqueued = append(report.Enqueued, in.ID)
	}

	log.Info(ctx, "refresh queued",
		logger.Int("enqueued", len(report.Enqueued)),
		logger.Int("pending", len(report.Pending)),
		logger.Int("dropped", len(report.Dropped)),
	)
	return report, nil
}

// PendingRefresh lists internships with a queued or running refresh.
func (s *Service) PendingRefresh() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deduper == nil {
		return []string{}
	}
	return s.deduper.Pending()
}

// process runs one queued refresh job.
func (s *Service) process(ctx context.Context, j model.AllocationJob) error {
	s.mu.RLock()
	deduper := s.deduper
	s.mu.RUnlock()
	defer deduper.Unrecord(ctx, j.InternshipID)

	_, err := s.Allocate(ctx, j.InternshipID)
	return err
}
