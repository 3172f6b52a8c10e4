package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/pricewise/internal/adapters/http/api"
	service "github.com/okian/pricewise/internal/app"
	"github.com/okian/pricewise/internal/smoke"
	"github.com/okian/pricewise/pkg/logger"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithDatabaseDSN(":memory:"),
		service.WithJWTSecret("smoke-secret"),
		service.WithBcryptCost(bcrypt.MinCost),
		service.WithLogger(logger.Discard()),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := startServer(t)
		cfg := &smoke.Config{
			BaseURL:  srv.URL,
			Users:    4,
			Searches: 3,
			Workers:  2,
			Timeout:  5 * time.Second,
		}

		Convey("When the smoke run executes", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			stats, err := smoke.Run(ctx, cfg, logger.Discard())

			Convey("Then every user flow passes", func() {
				So(err, ShouldBeNil)
				So(stats.UsersCreated, ShouldEqual, 4)
				So(stats.SearchesOK, ShouldEqual, 12)
				So(stats.RankingsVerified, ShouldEqual, 12)
				So(stats.PaymentsOK, ShouldEqual, 4)
				So(stats.Failures, ShouldBeEmpty)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := &smoke.Config{BaseURL: "http://127.0.0.1:1", Users: 1, Workers: 1, Timeout: time.Second}

		Convey("Then the health check fails", func() {
			_, err := smoke.Run(context.Background(), cfg, logger.Discard())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifyRanking(t *testing.T) {
	Convey("Given ranking results", t, func() {
		Convey("When ranks and scores are consistent", func() {
			out := []smoke.RankedProduct{{Rank: 1, MBScore: 48}, {Rank: 2, MBScore: 40.4}}
			So(smoke.VerifyRanking(out), ShouldBeNil)
		})

		Convey("When a rank is skipped", func() {
			out := []smoke.RankedProduct{{Rank: 1, MBScore: 48}, {Rank: 3, MBScore: 40}}
			So(smoke.VerifyRanking(out), ShouldNotBeNil)
		})

		Convey("When a lower rank has a higher score", func() {
			out := []smoke.RankedProduct{{Rank: 1, MBScore: 40}, {Rank: 2, MBScore: 48}}
			So(smoke.VerifyRanking(out), ShouldNotBeNil)
		})

		Convey("When the ranking is empty", func() {
			So(smoke.VerifyRanking(nil), ShouldNotBeNil)
		})
	})
}

func TestVerifyPriceOrder(t *testing.T) {
	Convey("Given products", t, func() {
		ps := []smoke.Product{{ProductPrice: 300}, {ProductPrice: 200}, {ProductPrice: 200}}

		So(smoke.VerifyPriceOrder(ps, true), ShouldBeNil)
		So(smoke.VerifyPriceOrder(ps, false), ShouldNotBeNil)
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given a server that rejects", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
		}))
		defer srv.Close()

		Convey("Then the status and message surface", func() {
			status, err := smoke.NewClient(srv.URL, time.Second).Do(context.Background(), http.MethodGet, "/x", "", nil, nil)
			So(status, ShouldEqual, http.StatusTooManyRequests)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "Too many requests")
			So(errors.Is(err, smoke.ErrFailed), ShouldBeFalse)
		})
	})
}
