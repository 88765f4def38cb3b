package main

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/vmunix/psxpack/internal/artwork"
	"github.com/vmunix/psxpack/internal/config"
	"github.com/vmunix/psxpack/internal/events"
	"github.com/vmunix/psxpack/internal/metadata"
	"github.com/vmunix/psxpack/pkg/screenscraper"
)

// app holds the services shared by commands.
type app struct {
	cfg *config.Config
	log *slog.Logger
	db  *sql.DB
}

func newApp() (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(os.Stderr, cfg)

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) screenScraper() *screenscraper.Client {
	ss := a.cfg.ScreenScraper
	return screenscraper.New(ss.DevID, ss.DevPassword,
		screenscraper.WithBaseURL(ss.BaseURL),
		screenscraper.WithSoftName(ss.SoftName),
		screenscraper.WithUserCredentials(ss.Username, ss.Password),
		screenscraper.WithLogger(a.log),
	)
}

func (a *app) metadata() *metadata.Service {
	return metadata.NewService(a.screenScraper(), metadata.NewCache(a.db), a.log.With("component", "metadata"))
}

func (a *app) artwork() *artwork.Fetcher {
	return artwork.New(a.cfg.Artwork.CacheDir, artwork.WithLogger(a.log))
}

func (a *app) bus() *events.Bus {
	return events.NewBus(events.NewEventLog(a.db), a.log.With("component", "bus"))
}
