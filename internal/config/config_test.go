package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Ad0t/PMIS-Allocation/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Repository, convey.ShouldEqual, "memory")
			convey.So(cfg.ResultStore, convey.ShouldEqual, "memory")
			convey.So(cfg.Strategy, convey.ShouldEqual, "local")
			convey.So(cfg.RemoteTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.SkillWeight, convey.ShouldEqual, 0.6)
			convey.So(cfg.ShortlistFraction, convey.ShouldEqual, 0.4)
			convey.So(cfg.PoolMode, convey.ShouldEqual, "applied")
			convey.So(cfg.FlightMode, convey.ShouldEqual, "join")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the strategy is rpc without a url", func() {
			cfg.Strategy = "rpc"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a score floor exceeds the whole scale", func() {
			cfg.MaxScore = 100
			cfg.ShortlistMinScore = 30
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the strategy is openai without a key", func() {
			cfg.Strategy = "openai"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the result store is redis without a url", func() {
			cfg.ResultStore = "redis"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the gorm store has no SQL repository", func() {
			cfg.ResultStore = "gorm"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the tier fractions add up past one", func() {
			cfg.ShortlistFraction = 0.7
			cfg.PromisingFraction = 0.5
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When every weight is zero", func() {
			cfg.SkillWeight, cfg.LocationWeight, cfg.EducationWeight = 0, 0, 0
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the modes are unknown", func() {
			cfg.PoolMode = "everyone"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When sqlite has no dsn", func() {
			cfg.Repository = "sqlite"
			cfg.ResultStore = "gorm"

			convey.Convey("Then a local database file is used", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "pmis.db")
			})
		})

		convey.Convey("When postgres has no dsn", func() {
			cfg.Repository = "postgres"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
