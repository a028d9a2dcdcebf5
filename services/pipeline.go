// services/pipeline.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/config"
	"github.com/gewnthar/statbel-downloader/models"
)

// PipelineDeps are the collaborators a Pipeline cannot build from config alone.
type PipelineDeps struct {
	FS       afero.Fs
	Fetcher  Fetcher
	Source   CalendarSource
	Recorder DownloadRecorder // optional
}

// Pipeline ties the catalog, the snapshot store and the orchestrator together
// for the CLIs, the scheduler and the admin endpoints. Runs are serialized.
type Pipeline struct {
	cfg          *config.Config
	fs           afero.Fs
	source       CalendarSource
	calendars    *CalendarStore
	orchestrator *FetchOrchestrator

	mu  sync.Mutex
	now func() time.Time
}

// RunReport summarizes one check-and-download pass.
type RunReport struct {
	RunID      string           `json:"run_id"`
	Today      models.Date      `json:"today"`
	Snapshot   string           `json:"snapshot"`
	ReportPath string           `json:"report_path,omitempty"`
	Downloaded int              `json:"downloaded"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Outcomes   []models.Outcome `json:"-"`
}

func NewPipeline(cfg *config.Config, deps PipelineDeps) *Pipeline {
	ledger := NewLedger(deps.FS, cfg.Download.DefaultExtension)
	orchestrator := NewFetchOrchestrator(deps.Fetcher, ledger, OrchestratorOptions{
		Concurrency:   cfg.Download.Concurrency,
		LookaheadDays: cfg.Calendar.LookaheadDays,
		Recorder:      deps.Recorder,
	})
	return &Pipeline{
		cfg:          cfg,
		fs:           deps.FS,
		source:       deps.Source,
		calendars:    NewCalendarStore(deps.FS, cfg.Paths.CalendarDir),
		orchestrator: orchestrator,
		now:          time.Now,
	}
}

// Today is the current date in the configured time zone.
func (p *Pipeline) Today() models.Date {
	return models.DateOf(p.now().In(p.cfg.Location))
}

// CheckAndDownload loads the catalog and the latest snapshot, then downloads
// every statistic due on today. The error is non-nil only for a
// *models.ConfigError, in which case nothing was processed.
func (p *Pipeline) CheckAndDownload(ctx context.Context, today models.Date) (*RunReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	catalog, err := config.LoadCatalog(p.fs, p.cfg.Paths.Catalog, p.cfg.Paths.DownloadBaseDir)
	if err != nil {
		return nil, err
	}
	snapshot, snapshotPath, err := p.calendars.LoadLatest()
	if err != nil {
		return nil, err
	}
	log.Printf("Service: Using calendar snapshot %s (%d entries, fetched %s)\n",
		snapshotPath, len(snapshot.Entries), snapshot.FetchedAt.Format(time.RFC3339))

	runID := uuid.NewString()
	outcomes := p.orchestrator.RunWithID(ctx, runID, catalog, snapshot, today)

	report := &RunReport{RunID: runID, Today: today, Snapshot: snapshotPath, Outcomes: outcomes}
	report.Downloaded, report.Skipped, report.Failed = countOutcomes(outcomes)

	if p.cfg.Paths.ReportDir != "" {
		path, err := WriteRunReport(p.fs, p.cfg.Paths.ReportDir, runID, today, outcomes)
		if err != nil {
			log.Printf("WARN Service: Failed to write run report: %v\n", err)
		} else {
			report.ReportPath = path
		}
	}
	return report, nil
}

// RefreshCalendar scrapes the calendar and stores a new snapshot.
func (p *Pipeline) RefreshCalendar(ctx context.Context) (models.CalendarSnapshot, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return RefreshCalendar(ctx, p.source, p.calendars, p.now().In(p.cfg.Location))
}
