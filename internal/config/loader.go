package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PMIS_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PMIS_CONFIG is set
//  3. env (prefix PMIS_), including a dotenv file named by PMIS_ENV_FILE or ./.env
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like PMIS_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	if path := os.Getenv(envPrefix + "ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: %w: %s: %w", ErrLoadConfig, ErrDotenv, path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w: .env: %w", ErrLoadConfig, ErrDotenv, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the combinations a running engine needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SkillWeight+c.LocationWeight+c.EducationWeight <= 0 {
		return fmt.Errorf("%w: score weights must not all be zero", ErrInvalidConfig)
	}
	if c.ClassifierMode == "fraction" && c.ShortlistFraction+c.PromisingFraction > 1 {
		return fmt.Errorf("%w: shortlist and promising fractions exceed 1", ErrInvalidConfig)
	}
	if c.ResultStore == "gorm" && c.Repository != "sqlite" && c.Repository != "postgres" {
		return fmt.Errorf("%w: result_store gorm needs a sqlite or postgres repository", ErrInvalidConfig)
	}
	if c.Repository == "sqlite" && c.DatabaseDSN == "" {
		c.DatabaseDSN = "pmis.db"
	}
	return nil
}
