package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/hoopstate/internal/app"
	"github.com/okian/hoopstate/internal/config"
	"github.com/okian/hoopstate/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestConfigLoading(t *testing.T) {
	convey.Convey("Given HOOP_ environment overrides", t, func() {
		_ = os.Setenv("HOOP_ADDR", ":8080")
		_ = os.Setenv("HOOP_QUEUE_SIZE", "1000")
		_ = os.Setenv("HOOP_WORKER_COUNT", "4")
		defer func() {
			_ = os.Unsetenv("HOOP_ADDR")
			_ = os.Unsetenv("HOOP_QUEUE_SIZE")
			_ = os.Unsetenv("HOOP_WORKER_COUNT")
		}()

		convey.Convey("Then the configuration reflects them", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given a started service behind the HTTP server", t, func() {
		cfg := config.New()
		svc := app.New(app.FromConfig(cfg)...)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(cfg, svc)
		convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)

		convey.Convey("Then stats and metrics are served", func() {
			for _, path := range []string{"/stats", "/healthz", "/games", "/openapi.yaml"} {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then unknown games are not found", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games/nope", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When its context ends it shuts down cleanly", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a configuration whose archive cannot open", t, func() {
		cfg := config.New()
		cfg.ArchiveDriver = "mysql"

		convey.Convey("Then run fails before serving", func() {
			convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdater(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := app.New()
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then a single update does not panic", func() {
			convey.So(func() { updateMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns when its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}
