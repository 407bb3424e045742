package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/config"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DBPath = filepath.Join(t.TempDir(), "ekiden.db")
	cfg.JWTSecret = "test-secret"
	cfg.InviteCode = "club"
	return cfg
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a configured application", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc, logger.Get())

		convey.Convey("Then the API docs are served", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a member can register and submit a result", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
				`{"email":"ann@example.com","password":"long enough","display_name":"Ann","invite_code":"club"}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard?bucket=5k&mode=best", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then stats report the started service", func() {
			stats := svc.GetStats()
			convey.So(stats["started"], convey.ShouldEqual, true)
			convey.So(stats["totalMembers"], convey.ShouldEqual, 0)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given a database path below a regular file", t, func() {
		cfg := testConfig(t)
		blocker := filepath.Join(t.TempDir(), "blocker")
		convey.So(os.WriteFile(blocker, []byte("x"), 0o600), convey.ShouldBeNil)
		cfg.DBPath = filepath.Join(blocker, "ekiden.db")

		convey.Convey("Then the service does not start", func() {
			svc, err := newService(context.Background(), cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(svc, convey.ShouldBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()

			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable on its own registry", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}
