package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gewnthar/statbel-downloader/config"
	"github.com/gewnthar/statbel-downloader/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestOpenDisabled(t *testing.T) {
	store, err := Open(config.DatabaseConfig{})
	if err != nil || store != nil {
		t.Errorf("Open without driver = %v, %v; want nil, nil", store, err)
	}
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(config.DatabaseConfig{
		Driver: "mysql", Host: "db.local", Port: "3306", User: "statbel", Password: "secret", DBName: "statbel",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "statbel:secret@tcp(db.local:3306)/statbel?") || !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("dsn = %q", dsn)
	}

	if dsn, _ := buildDSN(config.DatabaseConfig{Driver: "sqlite"}); dsn != "data/statbel.db" {
		t.Errorf("default sqlite dsn = %q", dsn)
	}
	if _, err := buildDSN(config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Errorf("expected error for unsupported driver")
	}
}

func TestLogAndListDownloads(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC)

	records := []models.DownloadRecord{
		{
			RunID: "run-1", StatisticLabel: "Bouwvergunningen", StatisticName: "Bouwvergunningen",
			ReleaseDate: models.NewDate(2024, time.March, 1), FilePath: "data/bouwvergunningen/Bouwvergunningen_2024-03-01.zip",
			SourceURL: "https://statbel.fgov.be/files/TF_BUILDING_PERMITS.zip", Bytes: 42, DataHash: "abc", DownloadedAt: base,
		},
		{
			RunID: "run-2", StatisticLabel: "Werkloosheid", StatisticName: "Werkloosheid",
			ReleaseDate: models.NewDate(2024, time.March, 2), FilePath: "data/w/Werkloosheid_2024-03-02.xlsx",
			SourceURL: "https://statbel.fgov.be/files/w.xlsx", Bytes: 7, DownloadedAt: base.Add(24 * time.Hour),
		},
	}
	for _, rec := range records {
		if err := store.LogDownload(ctx, rec); err != nil {
			t.Fatalf("LogDownload: %v", err)
		}
	}

	history, err := store.GetDownloadHistory(ctx, 0)
	if err != nil {
		t.Fatalf("GetDownloadHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d rows, want 2", len(history))
	}
	latest := history[0]
	if latest.StatisticLabel != "Werkloosheid" || latest.DataHash != "" || !latest.ReleaseDate.Equal(models.NewDate(2024, time.March, 2)) {
		t.Errorf("latest row = %+v", latest)
	}
	if !history[1].DownloadedAt.Equal(base) || history[1].DataHash != "abc" {
		t.Errorf("oldest row = %+v", history[1])
	}

	limited, err := store.GetDownloadHistory(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limit 1 returned %d rows, %v", len(limited), err)
	}
}

func TestLogDownloadReplacesSameRelease(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	rec := models.DownloadRecord{
		RunID: "run-1", StatisticLabel: "A", StatisticName: "A", ReleaseDate: models.NewDate(2024, time.March, 1),
		FilePath: "data/A/A_2024-03-01.zip", SourceURL: "https://example.test/a.zip", Bytes: 1,
		DownloadedAt: time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC),
	}
	if err := store.LogDownload(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.RunID = "run-2"
	rec.Bytes = 2
	if err := store.LogDownload(ctx, rec); err != nil {
		t.Fatal(err)
	}

	history, err := store.GetDownloadHistory(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].RunID != "run-2" || history[0].Bytes != 2 {
		t.Errorf("history = %+v", history)
	}
}
