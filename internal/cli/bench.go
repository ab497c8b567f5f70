package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

// workerChannelMultiplier sizes the job channel relative to the worker count.
const workerChannelMultiplier = 2

// Bench fires cfg.Rounds concurrent allocate calls at each internship and
// checks what comes back: every list must be well formed and the published
// version must never fall behind a version a caller was handed. With no ids
// it targets every active internship.
func Bench(ctx context.Context, client *Client, cfg *Config, ids []string) (*Stats, error) {
	log := logger.Get().Named("bench")
	start := time.Now()

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	if len(ids) == 0 {
		list, err := client.Internships(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list active internships: %w", err)
		}
		for _, in := range list {
			ids = append(ids, in.ID)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("no internships to bench")
	}

	workers := max(cfg.Workers, 1)
	rounds := max(cfg.Rounds, 1)
	log.Info(ctx, "starting allocation bench",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("internships", len(ids)),
		logger.Int("rounds", rounds),
		logger.Int("workers", workers),
	)

	var (
		mu       sync.Mutex
		stats    = &Stats{}
		runs     = map[string]struct{}{}
		maxSeen  = map[string]uint64{}
		problems []error
	)
	record := func(id string, a Allocation, err error) {
		mu.Lock()
		defer mu.Unlock()
		stats.Requests++
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests:
			stats.Busy++
			return
		case err != nil:
			stats.Failed++
			log.Debug(ctx, "allocate failed", logger.String("internship_id", id), logger.Error(err))
			return
		}
		stats.Succeeded++
		if a.Stale {
			stats.Stale++
		}
		runs[a.RunID] = struct{}{}
		if a.Version > maxSeen[id] {
			maxSeen[id] = a.Version
		}
		if verr := ranking.Validate(id, a.Entries); verr != nil {
			problems = append(problems, verr)
		}
	}

	jobs := make(chan string, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if ctx.Err() != nil {
					return
				}
				a, err := client.Allocate(ctx, id, cfg.Wait)
				record(id, a, err)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for r := 0; r < rounds; r++ {
			for _, id := range ids {
				select {
				case jobs <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	wg.Wait()

	for id, seen := range maxSeen {
		final, err := client.Result(ctx, id)
		if err != nil {
			problems = append(problems, fmt.Errorf("read result for %s: %w", id, err))
			continue
		}
		if final.Version < seen {
			problems = append(problems, fmt.Errorf("internship %s: published version %d behind observed version %d", id, final.Version, seen))
		}
	}

	stats.Runs = len(runs)
	stats.Duration = time.Since(start)
	log.Info(ctx, "bench finished",
		logger.Int("requests", stats.Requests),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("stale", stats.Stale),
		logger.Int("busy", stats.Busy),
		logger.Int("failed", stats.Failed),
		logger.Int("runs", stats.Runs),
		logger.String("duration", stats.Duration.String()),
	)

	if len(problems) > 0 {
		return stats, fmt.Errorf("result verification failed: %w", errors.Join(problems...))
	}
	return stats, nil
}
