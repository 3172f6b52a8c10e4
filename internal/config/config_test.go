package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pricewise/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatabaseDSN, convey.ShouldEqual, "sqlite://pricewise.db")
			convey.So(cfg.RatingWeight, convey.ShouldEqual, 10)
			convey.So(cfg.PopularityDivisor, convey.ShouldEqual, 10)
			convey.So(cfg.TokenTTL(), convey.ShouldEqual, 2*time.Hour)
			convey.So(cfg.ResetCodeTTL(), convey.ShouldEqual, 10*time.Minute)
			convey.So(cfg.SlowQueryThreshold(), convey.ShouldEqual, 200*time.Millisecond)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"addr":               func(c *config.Config) { c.Addr = " " },
			"database_dsn":       func(c *config.Config) { c.DatabaseDSN = "" },
			"jwt_secret":         func(c *config.Config) { c.JWTSecret = "" },
			"token_ttl_minutes":  func(c *config.Config) { c.TokenTTLMinutes = 0 },
			"rating_weight":      func(c *config.Config) { c.RatingWeight = -1 },
			"popularity_divisor": func(c *config.Config) { c.PopularityDivisor = 0 },
			"reset_code_ttl":     func(c *config.Config) { c.ResetCodeTTLMinutes = 0 },
			"log_format":         func(c *config.Config) { c.LogFormat = "xml" },
		}

		convey.Convey("Then each is rejected as invalid", func() {
			for _, mutate := range cases {
				cfg := config.New(ctx)
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
