package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/database"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/remote"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/repository"
	"github.com/Ad0t/PMIS-Allocation/internal/adapters/resultstore"
	"github.com/Ad0t/PMIS-Allocation/internal/config"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/classify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/flight"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/ranking"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/scoring"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

const natsClientName = "pmis-allocation"

// Components is a service built from configuration together with the
// resources it opened.
type Components struct {
	Service    *Service
	Repository repository.Repository
	Store      resultstore.Store

	closers []func() error
}

// Close releases everything Build opened, newest first.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Build opens the configured data source, result store, ranker and
// notifier and returns an unstarted Service over them.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	db, err := c.openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if c.Repository, err = c.buildRepository(ctx, cfg, db); err != nil {
		return nil, err
	}
	if c.Store, err = c.buildStore(ctx, cfg, db); err != nil {
		return nil, err
	}

	scorer := scoring.New(
		scoring.WithWeights(scoring.Weights{
			Skills:    cfg.SkillWeight,
			Location:  cfg.LocationWeight,
			Education: cfg.EducationWeight,
		}),
		scoring.WithMaxScore(cfg.MaxScore),
	)
	classifier := buildClassifier(cfg, scorer.MaxScore())
	strategy, err := buildStrategy(cfg, scorer)
	if err != nil {
		return nil, err
	}

	notifier, err := c.buildNotifier(cfg)
	if err != nil {
		return nil, err
	}

	flightMode, err := flight.ParseMode(cfg.FlightMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	poolMode, err := ranking.ParsePoolMode(cfg.PoolMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	c.Service = New(
		WithLogger(log),
		WithRepository(c.Repository),
		WithStrategy(strategy),
		WithClassifier(classifier),
		WithResultStore(c.Store),
		WithNotifier(notifier),
		WithFlightMode(flightMode),
		WithPoolMode(poolMode),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueCapacity(cfg.QueueSize),
	)
	return c, nil
}

func (c *Components) openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var driver string
	switch cfg.Repository {
	case repository.KindSQLite:
		driver = database.DriverSQLite
	case repository.KindPostgres:
		driver = database.DriverPostgres
	default:
		return nil, nil
	}
	db, err := database.Open(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return db, nil
}

func (c *Components) buildRepository(ctx context.Context, cfg *config.Config, db *gorm.DB) (repository.Repository, error) {
	switch cfg.Repository {
	case repository.KindMemory:
		return repository.NewMemory(), nil
	case repository.KindUnconfigured:
		return repository.Unconfigured{}, nil
	case repository.KindSQLite, repository.KindPostgres:
		repo := repository.NewGorm(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		if cfg.Seed {
			if err := repo.Seed(ctx, repository.SampleInternships(), repository.SampleCandidates()); err != nil {
				return nil, err
			}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownKind, cfg.Repository)
	}
}

func (c *Components) buildStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (resultstore.Store, error) {
	switch cfg.ResultStore {
	case resultstore.BackendMemory:
		store := resultstore.NewMemory(ctx)
		c.closers = append(c.closers, store.Close)
		return store, nil
	case resultstore.BackendGorm:
		if db == nil {
			return nil, fmt.Errorf("%w: result_store gorm needs a SQL repository", config.ErrInvalidConfig)
		}
		store := resultstore.NewGorm(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case resultstore.BackendRedis:
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client.Close)
		return resultstore.NewRedis(client, resultstore.WithTTL(cfg.ResultTTL)), nil
	default:
		return nil, fmt.Errorf("%w: unknown result store %q", config.ErrInvalidConfig, cfg.ResultStore)
	}
}

func buildStrategy(cfg *config.Config, scorer *scoring.Scorer) (ranking.Strategy, error) {
	switch cfg.Strategy {
	case ranking.LocalName:
		return ranking.NewLocal(scorer), nil
	case remote.RPCName:
		return remote.NewRPC(cfg.RPCURL,
			remote.WithFunction(cfg.RPCFunction),
			remote.WithAPIKey(cfg.RPCAPIKey),
			remote.WithTimeout(cfg.RemoteTimeout),
			remote.WithMaxScore(scorer.MaxScore()),
		)
	case remote.OpenAIName:
		return remote.NewOpenAI(remote.OpenAIConfig{
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Timeout:  cfg.RemoteTimeout,
			MaxScore: scorer.MaxScore(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", config.ErrInvalidConfig, cfg.Strategy)
	}
}

func buildClassifier(cfg *config.Config, maxScore float64) *classify.Classifier {
	opts := []classify.Option{
		classify.WithMinScores(cfg.ShortlistMinScore, cfg.PromisingMinScore),
		classify.WithMaxScore(maxScore),
	}
	if cfg.ClassifierMode == string(classify.ModeCount) {
		opts = append(opts, classify.WithCounts(cfg.ShortlistCount, cfg.PromisingCount))
	} else {
		opts = append(opts, classify.WithFractions(cfg.ShortlistFraction, cfg.PromisingFraction))
	}
	return classify.New(opts...)
}

func (c *Components) buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	if cfg.NATSURL == "" {
		return notify.Nop{}, nil
	}
	conn, err := notify.Connect(cfg.NATSURL, natsClientName)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		conn.Close()
		return nil
	})
	return notify.NewNATS(conn, cfg.NATSSubject), nil
}
