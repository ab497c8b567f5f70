package service

import (
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/resultstore"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/classify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/flight"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRepository sets the data source.
func WithRepository(repo repository.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithStrategy sets the ranking strategy.
func WithStrategy(strategy ranking.Strategy) Option {
	return func(s *Service) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithClassifier sets the status classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithResultStore sets where results are published. The caller keeps
// ownership and closes it.
func WithResultStore(store resultstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier sets who hears about published results.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithFlightMode sets what a second Allocate for a running internship does.
func WithFlightMode(mode flight.Mode) Option {
	return func(s *Service) {
		if mode == flight.ModeJoin || mode == flight.ModeReject {
			s.flightMode = mode
		}
	}
}

// WithPoolMode sets which candidates compete for an internship.
func WithPoolMode(mode ranking.PoolMode) Option {
	return func(s *Service) {
		if mode == ranking.PoolApplied || mode == ranking.PoolAll {
			s.poolMode = mode
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueCapacity sets how many refresh jobs may wait at once.
func WithQueueCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
