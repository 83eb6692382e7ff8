package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/upg/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:8080")
			convey.So(cfg.StorageKey, convey.ShouldEqual, "upg-calculator:v1")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "file")
			convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.BackupSchedule, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field each", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = " " },
			"empty key":           func(c *config.Config) { c.StorageKey = "" },
			"zero queue":          func(c *config.Config) { c.PersistQueueSize = 0 },
			"unknown log format":  func(c *config.Config) { c.LogFormat = "xml" },
			"unknown driver":      func(c *config.Config) { c.StoreDriver = "redis" },
			"sqlite without path": func(c *config.Config) { c.StoreDriver, c.StorePath = "sqlite", "" },
			"postgres without dsn": func(c *config.Config) {
				c.StoreDriver, c.StoreDSN = "postgres", ""
			},
			"bad schedule":       func(c *config.Config) { c.BackupSchedule = "every day" },
			"bad backup format":  func(c *config.Config) { c.BackupSchedule, c.BackupFormat = "@daily", "toml" },
			"no backups kept":    func(c *config.Config) { c.BackupSchedule, c.BackupKeep = "0 3 * * *", 0 },
			"backup without dir": func(c *config.Config) { c.BackupSchedule, c.BackupDir = "0 3 * * *", "" },
		}
		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(name, convey.ShouldNotBeEmpty)
		}
	})

	convey.Convey("Given a memory store and a scheduled YAML backup", t, func() {
		cfg := config.New(context.Background())
		cfg.StoreDriver, cfg.StorePath = "memory", ""
		cfg.BackupSchedule, cfg.BackupFormat = "*/5 * * * *", "yaml"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
