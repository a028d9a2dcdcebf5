// Package app wires configuration, storage and transport into a
// services.Pipeline for the CLIs and the serve mode.
package app

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/config"
	"github.com/gewnthar/statbel-downloader/database"
	"github.com/gewnthar/statbel-downloader/handlers"
	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/scraper"
	"github.com/gewnthar/statbel-downloader/services"
)

// DefaultConfigPaths are tried in order when no --config is given.
var DefaultConfigPaths = []string{"config/config.yaml", "config.yaml"}

// App is a fully wired process.
type App struct {
	Config   *config.Config
	Store    *database.Store // nil when the history is disabled
	Pipeline *services.Pipeline
}

// Bootstrap loads .env and config.yaml and connects the history store.
// Configuration failures are returned as *models.ConfigError.
func Bootstrap(configPath, envPath string) (*App, error) {
	if err := config.LoadEnv(envPath); err != nil {
		return nil, &models.ConfigError{Source: envPath, Err: err}
	}

	configPath = resolveConfigPath(configPath)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, &models.ConfigError{Source: configSource(configPath), Err: err}
	}
	log.Printf("Config: Loaded %s (catalog %s, calendar dir %s, time zone %s)\n",
		configSource(configPath), cfg.Paths.Catalog, cfg.Paths.CalendarDir, cfg.Location)

	store, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize download history: %w", err)
	}

	deps := services.PipelineDeps{
		FS:      afero.NewOsFs(),
		Fetcher: scraper.NewFileFetcher(cfg.Download.Timeout, cfg.Download.UserAgent),
		Source:  scraper.NewCalendarScraper(cfg.Calendar.URL, cfg.Calendar.TableSelector, cfg.Download.UserAgent, cfg.Calendar.Timeout),
	}
	if store != nil {
		deps.Recorder = store
	}

	return &App{Config: cfg, Store: store, Pipeline: services.NewPipeline(cfg, deps)}, nil
}

// History returns the store as a handlers.HistoryStore, or nil when disabled.
func (a *App) History() handlers.HistoryStore {
	if a.Store == nil {
		return nil
	}
	return a.Store
}

func (a *App) Close() {
	a.Store.Close()
}

func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	for _, candidate := range DefaultConfigPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func configSource(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
