// Package config defines the engine configuration and how it is loaded.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat selects json or console output.
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// Repository selects the data source: memory, sqlite, postgres or unconfigured.
	Repository string `koanf:"repository" validate:"oneof=memory sqlite postgres unconfigured"`
	// DatabaseDSN is the sqlite path or postgres connection string.
	DatabaseDSN string `koanf:"database_dsn" validate:"required_if=Repository postgres"`
	// Seed loads the sample data set into a SQL repository on start.
	Seed bool `koanf:"seed"`

	// ResultStore selects where results are published: memory, gorm or redis.
	ResultStore string `koanf:"result_store" validate:"oneof=memory gorm redis"`
	// RedisURL is used by the redis result store.
	RedisURL string `koanf:"redis_url" validate:"required_if=ResultStore redis"`
	// ResultTTL expires redis results; zero keeps them.
	ResultTTL time.Duration `koanf:"result_ttl" validate:"gte=0"`

	// Strategy selects the ranker: local, rpc or openai.
	Strategy string `koanf:"strategy" validate:"oneof=local rpc openai"`
	// RemoteTimeout bounds every remote ranking call.
	RemoteTimeout time.Duration `koanf:"remote_timeout" validate:"gt=0"`
	// RPCURL is the base URL of the rpc ranker.
	RPCURL string `koanf:"rpc_url" validate:"required_if=Strategy rpc"`
	// RPCFunction is the remote function name.
	RPCFunction string `koanf:"rpc_function"`
	// RPCAPIKey is sent with every rpc call.
	RPCAPIKey string `koanf:"rpc_api_key"`
	// OpenAIAPIKey authenticates the openai ranker.
	OpenAIAPIKey string `koanf:"openai_api_key" validate:"required_if=Strategy openai"`
	// OpenAIBaseURL points at an OpenAI compatible endpoint.
	OpenAIBaseURL string `koanf:"openai_base_url" validate:"omitempty,url"`
	// OpenAIModel is the chat model used for ranking.
	OpenAIModel string `koanf:"openai_model"`

	// Compatibility score weights and scale.
	SkillWeight     float64 `koanf:"skill_weight" validate:"gte=0"`
	LocationWeight  float64 `koanf:"location_weight" validate:"gte=0"`
	EducationWeight float64 `koanf:"education_weight" validate:"gte=0"`
	MaxScore        float64 `koanf:"max_score" validate:"gt=0"`

	// ClassifierMode is fraction or count.
	ClassifierMode    string  `koanf:"classifier_mode" validate:"oneof=fraction count"`
	ShortlistFraction float64 `koanf:"shortlist_fraction" validate:"gte=0,lte=1"`
	PromisingFraction float64 `koanf:"promising_fraction" validate:"gte=0,lte=1"`
	ShortlistCount    int     `koanf:"shortlist_count" validate:"gte=0"`
	PromisingCount    int     `koanf:"promising_count" validate:"gte=0"`
	// Score floors are fractions of MaxScore.
	ShortlistMinScore float64 `koanf:"shortlist_min_score" validate:"gte=0,lte=1"`
	PromisingMinScore float64 `koanf:"promising_min_score" validate:"gte=0,lte=1"`

	// PoolMode is applied (only applicants compete) or all.
	PoolMode string `koanf:"pool_mode" validate:"oneof=applied all"`
	// FlightMode is join or reject for concurrent runs on one internship.
	FlightMode string `koanf:"flight_mode" validate:"oneof=join reject"`

	// QueueSize bounds the refresh job queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`
	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// NATSURL enables publish notifications when set.
	NATSURL string `koanf:"nats_url"`
	// NATSSubject is where publish notifications go.
	NATSSubject string `koanf:"nats_subject"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "json",
		Addr:              ":9080",
		ShutdownTimeout:   10 * time.Second,
		Repository:        "memory",
		ResultStore:       "memory",
		Strategy:          "local",
		RemoteTimeout:     10 * time.Second,
		RPCFunction:       "rank_candidates",
		OpenAIModel:       "gpt-4o-mini",
		SkillWeight:       0.6,
		LocationWeight:    0.2,
		EducationWeight:   0.2,
		MaxScore:          1.0,
		ClassifierMode:    "fraction",
		ShortlistFraction: 0.4,
		PromisingFraction: 0.4,
		ShortlistCount:    3,
		PromisingCount:    3,
		ShortlistMinScore: 0.3,
		PromisingMinScore: 0.1,
		PoolMode:          "applied",
		FlightMode:        "join",
		QueueSize:         1024,
		WorkerCount:       runtime.NumCPU(),
		NATSSubject:       "pmis.allocation.published",
	}
}
