package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/curriculum/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.CatalogPath, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a broken value", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"no workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"no queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"negative ttl", func(c *config.Config) { c.RedisTTLSeconds = -1 }},
			{"unknown store", func(c *config.Config) { c.Store = "sqlite" }},
			{"redis without address", func(c *config.Config) { c.Store, c.RedisAddr = config.StoreRedis, "" }},
			{"postgres without url", func(c *config.Config) { c.Store = config.StorePostgres }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given an unsupported store backend", t, func() {
		cfg := config.New()
		cfg.Store = "sqlite"
		err := cfg.Validate()

		convey.So(errors.Is(err, config.ErrUnknownStore), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, `"sqlite"`)
	})

	convey.Convey("Given a complete postgres config", t, func() {
		cfg := config.New()
		cfg.Store = config.StorePostgres
		cfg.PostgresURL = "postgres://localhost/curriculum"

		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
