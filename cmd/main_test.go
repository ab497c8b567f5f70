package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/http/api"
	app "github.com/Ad0t/PMIS-Allocation/internal/app"
	"github.com/Ad0t/PMIS-Allocation/internal/config"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("PMIS_ADDR", ":8080")
			_ = os.Setenv("PMIS_QUEUE_SIZE", "1000")
			_ = os.Setenv("PMIS_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("PMIS_ADDR")
				_ = os.Unsetenv("PMIS_QUEUE_SIZE")
				_ = os.Unsetenv("PMIS_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("PMIS_REPOSITORY", "mongo")
			defer func() { _ = os.Unsetenv("PMIS_REPOSITORY") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given a service built from default configuration", t, func() {
		ctx := context.Background()
		components, err := app.Build(ctx, config.New(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = components.Close() }()

		svc := components.Service
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When the metrics updaters run until their context ends", func() {
			tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(tctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(tctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When updating metrics directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When serving the registered routes", func() {
			mux := http.NewServeMux()
			api.NewServer(svc).Register(mux)
			srv := httptest.NewServer(mux)
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, err = http.Post(srv.URL+"/api/allocations/5", "application/json", nil)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.ShutdownTimeout = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then run shuts down cleanly", func() {
			convey.So(run(ctx, cfg, logger.Nop()), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a configuration Build rejects", t, func() {
		cfg := config.New()
		cfg.Strategy = "rpc"

		convey.Convey("Then run returns the error", func() {
			err := run(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
