// models/meta.go
package models

import "time"

// DownloadRecord is one row of the statistic_downloads history table.
// The history is an audit trail; the files on disk remain the ledger.
type DownloadRecord struct {
	ID             int64     `db:"id" json:"id"`
	RunID          string    `db:"run_id" json:"run_id"`
	StatisticLabel string    `db:"statistic_label" json:"statistic_label"`
	StatisticName  string    `db:"statistic_name" json:"statistic_name"`
	ReleaseDate    Date      `db:"release_date" json:"release_date"`
	FilePath       string    `db:"file_path" json:"file_path"`
	SourceURL      string    `db:"source_url" json:"source_url"`
	Bytes          int64     `db:"bytes" json:"bytes"`
	DataHash       string    `db:"data_hash" json:"data_hash,omitempty"` // sha256 of file content
	DownloadedAt   time.Time `db:"downloaded_at" json:"downloaded_at"`
}
