// Package compose holds the composition roots: each deployment target
// gets one function that decides which implementation backs each
// capability. Services never make that decision themselves.
package compose

import (
	"fmt"

	"github.com/cuebird/cuebird/internal/config"
	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/content"
	"github.com/cuebird/cuebird/internal/infrastructure/sqlite"
	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/reading"
	"github.com/cuebird/cuebird/internal/service"
	"github.com/cuebird/cuebird/internal/settings"
	"github.com/cuebird/cuebird/internal/style"
)

// registerCore wires the capabilities every deployment shares.
// Factories run lazily on first resolve, so a broken settings file only
// surfaces when something actually asks for settings.
func registerCore(c *container.Container, cfg config.Config) {
	c.Register(service.CapFileLoader, func() (any, error) {
		return content.NewLoader(), nil
	})

	c.Register(service.CapContentParser, func() (any, error) {
		return content.NewParser(), nil
	})

	c.Register(service.CapContentAnalyzer, func() (any, error) {
		return content.NewAnalyzer(), nil
	})

	c.Register(service.CapSettingsStore, func() (any, error) {
		path, err := settings.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locating settings: %w", err)
		}
		return settings.NewStore(path)
	})

	c.Register(service.CapStyleProvider, func() (any, error) {
		name := cfg.Theme
		if name == "" {
			name = style.DetectTheme()
		}
		return style.NewProvider(name)
	})

	c.Register(service.CapReadingMetrics, func() (any, error) {
		m := reading.NewMetrics()
		m.SetBaseWPM(cfg.Reading.WPM)
		return m, nil
	})

	c.Register(service.CapReadingController, func() (any, error) {
		ctrl := reading.NewController()
		ctrl.SetSpeed(cfg.Reading.DefaultSpeed)
		return ctrl, nil
	})
}

// Desktop builds the container for the terminal prompter.
func Desktop(cfg config.Config) *container.Container {
	c := container.New()
	registerCore(c, cfg)
	registerSessionStore(c, cfg)

	log.Debug(log.CatCompose, "desktop container composed", "capabilities", len(c.Capabilities()))
	return c
}

// Backend builds the container for the HTTP backend. The capability
// set matches Desktop today; the roots stay separate so the two
// deployments can diverge without touching the services.
func Backend(cfg config.Config) *container.Container {
	c := container.New()
	registerCore(c, cfg)
	registerSessionStore(c, cfg)

	log.Debug(log.CatCompose, "backend container composed", "capabilities", len(c.Capabilities()))
	return c
}

// registerSessionStore wires the SQLite reading history when enabled.
// A disabled or unconfigured history leaves the capability unregistered;
// consumers treat that as "no history" rather than an error.
func registerSessionStore(c *container.Container, cfg config.Config) {
	if !cfg.Sessions.Enabled {
		log.Debug(log.CatCompose, "session history disabled")
		return
	}

	dbPath := cfg.Sessions.DBPath
	if dbPath == "" {
		dbPath = config.DefaultHistoryDBPath()
	}
	if dbPath == "" {
		log.Warn(log.CatCompose, "session history unavailable, no home directory")
		return
	}

	c.Register(service.CapSessionStore, func() (any, error) {
		db, err := sqlite.NewDB(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening session history: %w", err)
		}
		return db.SessionRepository(), nil
	})
}
