// services/orchestrator.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/urlpattern"
)

// Fetcher retrieves the full payload at a URL. *scraper.FileFetcher is the
// production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DownloadRecorder receives an audit row for every successful download.
type DownloadRecorder interface {
	LogDownload(ctx context.Context, rec models.DownloadRecord) error
}

// OrchestratorOptions tune a FetchOrchestrator. Zero values mean sequential
// processing, no upcoming-release log and no history.
type OrchestratorOptions struct {
	Concurrency   int
	LookaheadDays int
	Recorder      DownloadRecorder
}

// FetchOrchestrator runs one check-and-download pass over the catalog.
type FetchOrchestrator struct {
	fetcher  Fetcher
	ledger   *Ledger
	opts     OrchestratorOptions
	inflight singleflight.Group
	now      func() time.Time
}

func NewFetchOrchestrator(fetcher Fetcher, ledger *Ledger, opts OrchestratorOptions) *FetchOrchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &FetchOrchestrator{fetcher: fetcher, ledger: ledger, opts: opts, now: time.Now}
}

// Run processes every catalog entry against the snapshot and returns one
// outcome per entry, in catalog order. A failing statistic never stops the
// others.
func (o *FetchOrchestrator) Run(ctx context.Context, catalog []models.StatisticDefinition, snapshot models.CalendarSnapshot, today models.Date) []models.Outcome {
	return o.RunWithID(ctx, uuid.NewString(), catalog, snapshot, today)
}

// RunWithID is Run with a caller-chosen run ID, used to tag history rows.
func (o *FetchOrchestrator) RunWithID(ctx context.Context, runID string, catalog []models.StatisticDefinition, snapshot models.CalendarSnapshot, today models.Date) []models.Outcome {
	log.Printf("Service: Run %s: checking %d statistics against %d calendar entries for %s\n",
		runID, len(catalog), len(snapshot.Entries), today)

	matches := Match(catalog, snapshot)
	o.logUpcoming(matches, today)

	outcomes := make([]models.Outcome, len(matches))
	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, m := range matches {
		i, m := i, m
		g.Go(func() error {
			outcomes[i] = o.process(ctx, runID, m, today)
			logOutcome(outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	downloaded, skipped, failed := countOutcomes(outcomes)
	log.Printf("Service: Run %s finished: %d downloaded, %d skipped, %d failed\n", runID, downloaded, skipped, failed)
	return outcomes
}

func (o *FetchOrchestrator) process(ctx context.Context, runID string, m MatchResult, today models.Date) models.Outcome {
	stat := m.Statistic
	if m.Err != nil {
		log.Printf("WARN Service: %v\n", m.Err)
		return models.Failed(stat, models.Date{}, m.Err)
	}
	if m.Record == nil {
		if m.Suggestion != "" {
			log.Printf("WARN Service: %q is not on the calendar, but %q is. The calendar wording may have changed.\n",
				stat.CalendarLabel, m.Suggestion)
		}
		return models.Skipped(stat, models.ReasonNotOnCalendar)
	}

	record := *m.Record
	if !IsDue(today, &record) {
		out := models.Skipped(stat, models.ReasonFutureRelease)
		out.ReleaseDate = record.PublicationDate
		return out
	}

	// The ledger check and the write happen inside one flight per ledger
	// file, so two workers never download the same release into one directory.
	key := filepath.Join(stat.DownloadDirectory, LedgerKey(stat, record.PublicationDate))
	v, _, _ := o.inflight.Do(key, func() (interface{}, error) {
		return o.fetchRelease(ctx, runID, stat, record), nil
	})
	return v.(models.Outcome)
}

func (o *FetchOrchestrator) fetchRelease(ctx context.Context, runID string, stat models.StatisticDefinition, record models.CalendarRecord) models.Outcome {
	release := record.PublicationDate

	existing, found, err := o.ledger.AlreadyDownloaded(stat, release)
	if err != nil {
		return models.Failed(stat, release, err)
	}
	if found {
		out := models.Skipped(stat, models.ReasonAlreadyDownloaded)
		out.ReleaseDate = release
		out.Path = existing
		return out
	}

	target, err := urlpattern.Resolve(stat.URLTemplate(), record)
	if err != nil {
		return models.Failed(stat, release, fmt.Errorf("failed to resolve download URL: %w", err))
	}

	data, err := o.fetcher.Fetch(ctx, target)
	if err != nil {
		var fetchErr *models.FetchError
		if !errors.As(err, &fetchErr) {
			err = &models.FetchError{URL: target, Err: err}
		}
		out := models.Failed(stat, release, err)
		out.URL = target
		return out
	}
	if len(data) == 0 {
		out := models.Failed(stat, release, &models.FetchError{URL: target, Err: errors.New("empty response body")})
		out.URL = target
		return out
	}

	ext := o.ledger.Extension(target, stat.DataType)
	path, err := o.ledger.Record(stat, release, ext, data)
	if err != nil {
		out := models.Failed(stat, release, err)
		out.URL = target
		return out
	}

	o.recordHistory(ctx, runID, stat, release, path, target, data)
	return models.Downloaded(stat, release, path, target)
}

// recordHistory never changes the outcome: the file on disk is what counts.
func (o *FetchOrchestrator) recordHistory(ctx context.Context, runID string, stat models.StatisticDefinition, release models.Date, path, url string, data []byte) {
	if o.opts.Recorder == nil {
		return
	}
	sum := sha256.Sum256(data)
	rec := models.DownloadRecord{
		RunID:          runID,
		StatisticLabel: stat.CalendarLabel,
		StatisticName:  stat.DisplayName(),
		ReleaseDate:    release,
		FilePath:       path,
		SourceURL:      url,
		Bytes:          int64(len(data)),
		DataHash:       hex.EncodeToString(sum[:]),
		DownloadedAt:   o.now().UTC().Truncate(time.Second),
	}
	if err := o.opts.Recorder.LogDownload(ctx, rec); err != nil {
		log.Printf("WARN Service: Failed to record download history for %q: %v\n", stat.CalendarLabel, err)
	}
}

func (o *FetchOrchestrator) logUpcoming(matches []MatchResult, today models.Date) {
	if o.opts.LookaheadDays <= 0 {
		return
	}
	upcoming := UpcomingReleases(matches, today, o.opts.LookaheadDays)
	if len(upcoming) == 0 {
		log.Printf("Service: No tracked publications in the next %d days.\n", o.opts.LookaheadDays)
		return
	}
	log.Printf("Service: %d tracked publications in the next %d days:\n", len(upcoming), o.opts.LookaheadDays)
	for _, m := range upcoming {
		log.Printf("Service:   %s  %s\n", m.Record.PublicationDate, m.Statistic.DisplayName())
	}
}

func logOutcome(out models.Outcome) {
	switch out.Status {
	case models.StatusDownloaded:
		log.Printf("Service: Downloaded %q (release %s) to %s\n", out.Statistic, out.ReleaseDate, out.Path)
	case models.StatusSkipped:
		log.Printf("Service: Skipped %q: %s\n", out.Statistic, out.Reason)
	case models.StatusFailed:
		log.Printf("ERROR Service: %q failed: %v\n", out.Statistic, out.Err)
	}
}

func countOutcomes(outcomes []models.Outcome) (downloaded, skipped, failed int) {
	for _, out := range outcomes {
		switch out.Status {
		case models.StatusDownloaded:
			downloaded++
		case models.StatusSkipped:
			skipped++
		case models.StatusFailed:
			failed++
		}
	}
	return downloaded, skipped, failed
}
