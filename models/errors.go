// models/errors.go
package models

import (
	"fmt"
	"strings"
)

// ConfigError means the catalog or the calendar snapshot could not be loaded.
// It is the only error that aborts a whole run.
type ConfigError struct {
	Source string // file or document that failed
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MatchAmbiguityError is raised for a statistic whose label cannot be joined
// to exactly one release: the label appears more than once in the catalog, or
// the snapshot lists it with different publication dates.
type MatchAmbiguityError struct {
	Label string
	Dates []Date // distinct snapshot dates, empty for catalog duplicates
}

func (e *MatchAmbiguityError) Error() string {
	if len(e.Dates) == 0 {
		return fmt.Sprintf("label %q is defined more than once in the catalog", e.Label)
	}
	dates := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		dates[i] = d.String()
	}
	return fmt.Sprintf("label %q appears in the calendar with %d different dates (%s)", e.Label, len(e.Dates), strings.Join(dates, ", "))
}

// FetchError is a network failure, a non-success response or an empty payload.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError means a download directory or file could not be written.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
