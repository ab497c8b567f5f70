package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Ad0t/PMIS-Allocation/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.Strategy, convey.ShouldEqual, "local")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PMIS_ADDR", ":8080")
			_ = os.Setenv("PMIS_QUEUE_SIZE", "64")
			_ = os.Setenv("PMIS_WORKER_COUNT", "3")
			_ = os.Setenv("PMIS_FLIGHT_MODE", "reject")
			_ = os.Setenv("PMIS_REMOTE_TIMEOUT", "250ms")
			_ = os.Setenv("PMIS_SHORTLIST_MIN_SCORE", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.FlightMode, convey.ShouldEqual, "reject")
				convey.So(cfg.RemoteTimeout, convey.ShouldEqual, 250*time.Millisecond)
				convey.So(cfg.ShortlistMinScore, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
strategy: rpc
rpc_url: "http://localhost:54321"
rpc_function: get_ranked_candidates
pool_mode: all
classifier_mode: count
shortlist_count: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PMIS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Strategy, convey.ShouldEqual, "rpc")
				convey.So(cfg.RPCURL, convey.ShouldEqual, "http://localhost:54321")
				convey.So(cfg.RPCFunction, convey.ShouldEqual, "get_ranked_candidates")
				convey.So(cfg.PoolMode, convey.ShouldEqual, "all")
				convey.So(cfg.ClassifierMode, convey.ShouldEqual, "count")
				convey.So(cfg.ShortlistCount, convey.ShouldEqual, 2)
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("PMIS_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PMIS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PMIS_CONFIG", "/nonexistent/pmis.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the named dotenv file is missing", func() {
			_ = os.Setenv("PMIS_ENV_FILE", "/nonexistent/pmis.env")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrDotenv), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a dotenv file is named", func() {
			tmpFile := createTempConfigFile("PMIS_STRATEGY=openai\nPMIS_OPENAI_API_KEY=sk-test\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PMIS_ENV_FILE", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Strategy, convey.ShouldEqual, "openai")
				convey.So(cfg.OpenAIAPIKey, convey.ShouldEqual, "sk-test")
			})
		})

		convey.Convey("When an env var holds an invalid value", func() {
			_ = os.Setenv("PMIS_REPOSITORY", "mongo")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"PMIS_CONFIG",
		"PMIS_ENV_FILE",
		"PMIS_ADDR",
		"PMIS_QUEUE_SIZE",
		"PMIS_WORKER_COUNT",
		"PMIS_FLIGHT_MODE",
		"PMIS_REMOTE_TIMEOUT",
		"PMIS_SHORTLIST_MIN_SCORE",
		"PMIS_REPOSITORY",
		"PMIS_STRATEGY",
		"PMIS_OPENAI_API_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pmis-config-*")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
