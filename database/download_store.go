// database/download_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gewnthar/statbel-downloader/models"
)

var schemas = map[string]string{
	"sqlite": `
		CREATE TABLE IF NOT EXISTS statistic_downloads (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			statistic_label TEXT NOT NULL,
			statistic_name  TEXT NOT NULL,
			release_date    TEXT NOT NULL,
			file_path       TEXT NOT NULL,
			source_url      TEXT NOT NULL,
			bytes           INTEGER NOT NULL,
			data_hash       TEXT,
			downloaded_at   DATETIME NOT NULL,
			UNIQUE (statistic_label, release_date)
		)`,
	"mysql": `
		CREATE TABLE IF NOT EXISTS statistic_downloads (
			id              BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id          VARCHAR(36) NOT NULL,
			statistic_label VARCHAR(255) NOT NULL,
			statistic_name  VARCHAR(255) NOT NULL,
			release_date    VARCHAR(10) NOT NULL,
			file_path       VARCHAR(1024) NOT NULL,
			source_url      VARCHAR(2048) NOT NULL,
			bytes           BIGINT NOT NULL,
			data_hash       CHAR(64),
			downloaded_at   DATETIME NOT NULL,
			UNIQUE KEY uq_statistic_release (statistic_label, release_date)
		)`,
}

func (s *Store) ensureSchema() error {
	ddl, ok := schemas[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}
	if _, err := s.DB.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create statistic_downloads table: %w", err)
	}
	return nil
}

// LogDownload stores one history row. A second download of the same release
// (after its file was removed by hand) replaces the earlier row.
func (s *Store) LogDownload(ctx context.Context, rec models.DownloadRecord) error {
	var dataHash sql.NullString
	if rec.DataHash != "" {
		dataHash = sql.NullString{String: rec.DataHash, Valid: true}
	}

	query := `
		REPLACE INTO statistic_downloads (
			run_id, statistic_label, statistic_name, release_date,
			file_path, source_url, bytes, data_hash, downloaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query,
		rec.RunID, rec.StatisticLabel, rec.StatisticName, rec.ReleaseDate.String(),
		rec.FilePath, rec.SourceURL, rec.Bytes, dataHash, rec.DownloadedAt.UTC(),
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to log download of '%s' (%s): %v", rec.StatisticLabel, rec.ReleaseDate, err)
		return fmt.Errorf("failed to log download for %s: %w", rec.StatisticLabel, err)
	}

	log.Printf("Database: Logged download of '%s' for release %s (%d bytes).\n", rec.StatisticLabel, rec.ReleaseDate, rec.Bytes)
	return nil
}

// GetDownloadHistory returns the most recent downloads first. limit <= 0
// means no limit.
func (s *Store) GetDownloadHistory(ctx context.Context, limit int) ([]models.DownloadRecord, error) {
	query := `
		SELECT id, run_id, statistic_label, statistic_name, release_date,
		       file_path, source_url, bytes, data_hash, downloaded_at
		FROM statistic_downloads
		ORDER BY downloaded_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistic_downloads: %w", err)
	}
	defer rows.Close()

	var records []models.DownloadRecord
	for rows.Next() {
		var r models.DownloadRecord
		var releaseDate string
		var dataHash sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.StatisticLabel, &r.StatisticName, &releaseDate,
			&r.FilePath, &r.SourceURL, &r.Bytes, &dataHash, &r.DownloadedAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan statistic_downloads row: %v", err)
			continue
		}
		if r.ReleaseDate, err = models.ParseDate(releaseDate); err != nil {
			log.Printf("WARN Database: Row %d has an invalid release date %q: %v", r.ID, releaseDate, err)
		}
		if dataHash.Valid {
			r.DataHash = dataHash.String
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistic_downloads rows: %w", err)
	}
	return records, nil
}
