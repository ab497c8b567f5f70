package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

const (
	defaultRedisPrefix = "pmis:allocation:"
	maxWatchRetries    = 16
)

// RedisStore keeps each result as one JSON value under its own key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires results after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewRedis creates a store backed by client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return BackendRedis }

func (s *RedisStore) key(internshipID string) string {
	return s.prefix + internshipID
}

// Publish implements Store. The version check runs under WATCH and the
// write is a single SET inside MULTI, so a concurrent writer aborts the
// transaction and the check is retried.
func (s *RedisStore) Publish(ctx context.Context, r model.AllocationResult) (err error) {
	start := time.Now()
	defer func() { observePublish(BackendRedis, start, err) }()

	if err := validate(r); err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	key := s.key(r.InternshipID)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var prev model.AllocationResult
			if err := json.Unmarshal(cur, &prev); err != nil {
				return fmt.Errorf("decode published result: %w", err)
			}
			if prev.Version >= r.Version {
				return staleError(r, prev.Version)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("publish result %s: %w", r.InternshipID, err)
	}
	return nil
}

// GetPublished implements Store.
func (s *RedisStore) GetPublished(ctx context.Context, internshipID string) (model.AllocationResult, error) {
	raw, err := s.client.Get(ctx, s.key(internshipID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.AllocationResult{}, fmt.Errorf("internship %s: %w", internshipID, ErrNoResult)
	}
	if err != nil {
		return model.AllocationResult{}, fmt.Errorf("read result %s: %w", internshipID, err)
	}
	var out model.AllocationResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.AllocationResult{}, fmt.Errorf("decode result %s: %w", internshipID, err)
	}
	return out, nil
}
