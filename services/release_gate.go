// services/release_gate.go
package services

import (
	"sort"

	"github.com/gewnthar/statbel-downloader/models"
)

// IsDue reports whether a matched release may be downloaded on today.
// Publication is effective on the listed date itself.
func IsDue(today models.Date, record *models.CalendarRecord) bool {
	return record != nil && !record.PublicationDate.After(today)
}

// UpcomingReleases returns the matched statistics published between today
// and days days from now, both inclusive, ordered by publication date.
func UpcomingReleases(matches []MatchResult, today models.Date, days int) []MatchResult {
	cutoff := today.AddDays(days)
	var upcoming []MatchResult
	for _, m := range matches {
		if m.Record == nil || m.Err != nil {
			continue
		}
		d := m.Record.PublicationDate
		if !d.Before(today) && !d.After(cutoff) {
			upcoming = append(upcoming, m)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Record.PublicationDate.Before(upcoming[j].Record.PublicationDate)
	})
	return upcoming
}
