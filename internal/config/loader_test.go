package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/curbcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"CURBCAST_CONFIG",
	"CURBCAST_ENV_FILE",
	"CURBCAST_ADDR",
	"CURBCAST_LOG_FORMAT",
	"CURBCAST_FEED_API_KEY",
	"CURBCAST_CACHE_TTL_SECONDS",
	"CURBCAST_SURGE_MODERATE",
	"CURBCAST_SURGE_HIGH",
	"CURBCAST_SERVE_STALE",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultAirport, convey.ShouldEqual, "GEG")
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.SurgeModerate, convey.ShouldEqual, 3)
			convey.So(cfg.SurgeHigh, convey.ShouldEqual, 6)
			convey.So(cfg.ServeStale, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = "" },
			"zero ttl":         func(c *config.Config) { c.CacheTTLSeconds = 0 },
			"swapped surge":    func(c *config.Config) { c.SurgeModerate, c.SurgeHigh = 6, 3 },
			"wide feed window": func(c *config.Config) { c.FeedWindowHours = 24 },
			"bad log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"airport without timezone": func(c *config.Config) {
				c.Airports = map[string]config.AirportConfig{"PDX": {}}
			},
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected as ErrInvalidConfig", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheTTL().Minutes(), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CURBCAST_ADDR", ":8080")
			_ = os.Setenv("CURBCAST_CACHE_TTL_SECONDS", "60")
			_ = os.Setenv("CURBCAST_FEED_API_KEY", "secret")
			_ = os.Setenv("CURBCAST_SERVE_STALE", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.FeedAPIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.ServeStale, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file and env vars", func() {
			yamlContent := `
addr: ":9090"
cache_ttl_seconds: 120
surge_moderate: 4
surge_high: 8
default_airport: pdx
airports:
  pdx:
    timezone: America/Los_Angeles
    zones:
      AS: C
      WN: AB
    excluded_carriers: [FX, 5X]
`
			_ = os.Setenv("CURBCAST_CONFIG", writeTemp(t, "curbcast.yaml", yamlContent))
			_ = os.Setenv("CURBCAST_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file and the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.SurgeModerate, convey.ShouldEqual, 4)
				convey.So(cfg.SurgeHigh, convey.ShouldEqual, 8)
				convey.So(cfg.FeedWindowHours, convey.ShouldEqual, 12)
			})

			convey.Convey("Then airport tables are loaded under upper-case codes", func() {
				convey.So(cfg.DefaultAirport, convey.ShouldEqual, "PDX")
				pdx, ok := cfg.Airports["PDX"]
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(pdx.Timezone, convey.ShouldEqual, "America/Los_Angeles")
				convey.So(pdx.Zones["AS"], convey.ShouldEqual, "C")
				convey.So(pdx.ExcludedCarriers, convey.ShouldResemble, []string{"FX", "5X"})
			})
		})

		convey.Convey("When a dotenv file is named", func() {
			_ = os.Setenv("CURBCAST_ENV_FILE", writeTemp(t, "test.env", "CURBCAST_FEED_API_KEY=from-dotenv\nCURBCAST_LOG_FORMAT=json\n"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FeedAPIKey, convey.ShouldEqual, "from-dotenv")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the named dotenv file is missing", func() {
			_ = os.Setenv("CURBCAST_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("CURBCAST_CONFIG", writeTemp(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CURBCAST_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an env var fails validation", func() {
			_ = os.Setenv("CURBCAST_SURGE_MODERATE", "9")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a validation error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "surge thresholds")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CURBCAST_CACHE_TTL_SECONDS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
