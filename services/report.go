// services/report.go
package services

import (
	"fmt"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/models"
)

type reportRow struct {
	RunID       string `csv:"run_id"`
	Statistic   string `csv:"statistic"`
	Label       string `csv:"label"`
	Status      string `csv:"status"`
	Reason      string `csv:"reason"`
	ReleaseDate string `csv:"release_date"`
	Path        string `csv:"path"`
	URL         string `csv:"url"`
	Error       string `csv:"error"`
}

// WriteRunReport writes one CSV row per outcome to
// <dir>/run_<today>_<runID>.csv and returns the file path.
func WriteRunReport(fsys afero.Fs, dir, runID string, today models.Date, outcomes []models.Outcome) (string, error) {
	rows := make([]reportRow, len(outcomes))
	for i, out := range outcomes {
		row := reportRow{
			RunID:       runID,
			Statistic:   out.Statistic,
			Label:       out.Label,
			Status:      string(out.Status),
			Reason:      out.Reason,
			ReleaseDate: out.ReleaseDate.String(),
			Path:        out.Path,
			URL:         out.URL,
		}
		if out.Err != nil {
			row.Error = out.Err.Error()
		}
		rows[i] = row
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", &models.StorageError{Op: "create directory", Path: dir, Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("run_%s_%s.csv", today, runID))
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return "", &models.StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}
