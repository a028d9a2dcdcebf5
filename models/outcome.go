// models/outcome.go
package models

// Status is the terminal state of one statistic in a run.
type Status string

const (
	StatusSkipped    Status = "skipped"
	StatusDownloaded Status = "downloaded"
	StatusFailed     Status = "failed"
)

// Skip reasons.
const (
	ReasonNotOnCalendar     = "not-on-calendar"
	ReasonFutureRelease     = "future-release"
	ReasonAlreadyDownloaded = "already-downloaded"
)

// Outcome is the result of processing one catalog entry.
type Outcome struct {
	Statistic   string
	Label       string
	Status      Status
	Reason      string // set for skipped outcomes
	ReleaseDate Date   // zero when the statistic was not matched
	Path        string // file written, or the existing ledger file when already downloaded
	URL         string
	Err         error // set for failed outcomes
}

// Skipped builds a skipped outcome.
func Skipped(stat StatisticDefinition, reason string) Outcome {
	return Outcome{Statistic: stat.DisplayName(), Label: stat.CalendarLabel, Status: StatusSkipped, Reason: reason}
}

// Downloaded builds a downloaded outcome.
func Downloaded(stat StatisticDefinition, release Date, path, url string) Outcome {
	return Outcome{Statistic: stat.DisplayName(), Label: stat.CalendarLabel, Status: StatusDownloaded, ReleaseDate: release, Path: path, URL: url}
}

// Failed builds a failed outcome.
func Failed(stat StatisticDefinition, release Date, err error) Outcome {
	return Outcome{Statistic: stat.DisplayName(), Label: stat.CalendarLabel, Status: StatusFailed, ReleaseDate: release, Err: err}
}

// AnyFailed reports whether at least one outcome failed.
func AnyFailed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}
