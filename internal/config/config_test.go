package config_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/ekiden/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "ekiden.db")
			convey.So(cfg.DefaultLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 1000)
			convey.So(cfg.TokenTTL(), convey.ShouldEqual, 7*24*time.Hour)
			convey.So(cfg.LatestWindow(), convey.ShouldEqual, 30*24*time.Hour)
		})

		convey.Convey("Then it is not valid without a signing secret", func() {
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			cfg.JWTSecret = "s3cret"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()
		cfg.JWTSecret = "s3cret"

		cases := []struct {
			key    string
			mutate func(*config.Config)
		}{
			{"addr", func(c *config.Config) { c.Addr = "" }},
			{"db_path", func(c *config.Config) { c.DBPath = "" }},
			{"token_ttl_minutes", func(c *config.Config) { c.TokenTTLMinutes = 0 }},
			{"max_leaderboard_limit", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"default_leaderboard_limit", func(c *config.Config) { c.DefaultLeaderboardLimit = 5000 }},
			{"dedupe_size", func(c *config.Config) { c.DedupeSize = -1 }},
			{"max_import_bytes", func(c *config.Config) { c.MaxImportBytes = 0 }},
			{"latest_window_days", func(c *config.Config) { c.LatestWindowDays = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.key+" is out of range it is rejected", func() {
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.key)
			})
		}
	})
}
