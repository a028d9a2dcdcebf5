// services/calendar_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/models"
)

var snapshotNameRegex = regexp.MustCompile(`^calendar_(\d{4})\.json$`)

// CalendarSource produces the current calendar rows. *scraper.CalendarScraper
// satisfies it.
type CalendarSource interface {
	URL() string
	FetchCalendar(ctx context.Context) ([]models.CalendarRecord, error)
}

// CalendarStore keeps calendar snapshots as calendar_<year>.json files.
type CalendarStore struct {
	fs  afero.Fs
	dir string
}

func NewCalendarStore(fsys afero.Fs, dir string) *CalendarStore {
	return &CalendarStore{fs: fsys, dir: dir}
}

func (s *CalendarStore) Dir() string { return s.dir }

// Save writes the snapshot for its year, replacing an older copy atomically.
func (s *CalendarStore) Save(snapshot models.CalendarSnapshot) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", &models.StorageError{Op: "create directory", Path: s.dir, Err: err}
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode calendar snapshot: %w", err)
	}

	target := filepath.Join(s.dir, fmt.Sprintf("calendar_%d.json", snapshot.Year))
	tmp := filepath.Join(s.dir, "."+filepath.Base(target)+partSuffix)
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return "", &models.StorageError{Op: "write", Path: tmp, Err: err}
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return "", &models.StorageError{Op: "rename", Path: target, Err: err}
	}
	return target, nil
}

// LoadLatest reads and validates the snapshot with the highest year.
// Every failure is a *models.ConfigError: without a snapshot no run can start.
func (s *CalendarStore) LoadLatest() (models.CalendarSnapshot, string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return models.CalendarSnapshot{}, "", &models.ConfigError{Source: s.dir, Err: fmt.Errorf("failed to list calendar directory: %w", err)}
	}

	latestYear := -1
	latest := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := snapshotNameRegex.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		if year > latestYear {
			latestYear = year
			latest = filepath.Join(s.dir, e.Name())
		}
	}
	if latest == "" {
		return models.CalendarSnapshot{}, "", &models.ConfigError{Source: s.dir, Err: errors.New("no calendar snapshot found, run fetch-calendar first")}
	}

	data, err := afero.ReadFile(s.fs, latest)
	if err != nil {
		return models.CalendarSnapshot{}, latest, &models.ConfigError{Source: latest, Err: err}
	}
	var snapshot models.CalendarSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return models.CalendarSnapshot{}, latest, &models.ConfigError{Source: latest, Err: fmt.Errorf("failed to parse snapshot: %w", err)}
	}
	if err := ValidateSnapshot(snapshot); err != nil {
		return models.CalendarSnapshot{}, latest, &models.ConfigError{Source: latest, Err: err}
	}
	return snapshot, latest, nil
}

// ValidateSnapshot checks that every entry has a label and a publication date.
func ValidateSnapshot(snapshot models.CalendarSnapshot) error {
	for i, e := range snapshot.Entries {
		if e.Label == "" {
			return fmt.Errorf("entry %d has an empty label", i)
		}
		if e.PublicationDate.IsZero() {
			return fmt.Errorf("entry %d (%q) has no publication date", i, e.Label)
		}
	}
	return nil
}

// RefreshCalendar scrapes the calendar and stores it as the snapshot for the
// year of now. A failed or empty scrape leaves the existing snapshot alone.
func RefreshCalendar(ctx context.Context, source CalendarSource, store *CalendarStore, now time.Time) (models.CalendarSnapshot, string, error) {
	log.Printf("Service: Refreshing publication calendar from %s\n", source.URL())

	records, err := source.FetchCalendar(ctx)
	if err != nil {
		return models.CalendarSnapshot{}, "", fmt.Errorf("failed to fetch calendar: %w", err)
	}
	if len(records) == 0 {
		return models.CalendarSnapshot{}, "", errors.New("calendar scrape returned no entries")
	}

	snapshot := models.CalendarSnapshot{
		SourceURL:    source.URL(),
		FetchedAt:    now,
		Year:         now.Year(),
		Entries:      records,
		TotalEntries: len(records),
	}
	if err := ValidateSnapshot(snapshot); err != nil {
		return models.CalendarSnapshot{}, "", fmt.Errorf("scraped calendar is invalid: %w", err)
	}

	path, err := store.Save(snapshot)
	if err != nil {
		return models.CalendarSnapshot{}, "", err
	}
	log.Printf("Service: Saved %d calendar entries to %s\n", len(records), path)
	return snapshot, path, nil
}
