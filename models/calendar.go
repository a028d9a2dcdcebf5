// models/calendar.go
package models

import "time"

// CalendarRecord is one row of the publication calendar.
type CalendarRecord struct {
	Label           string `json:"label"`
	PublicationDate Date   `json:"publication_date"`
	Period          string `json:"period,omitempty"`    // e.g. "februari 2024", descriptive
	DateText        string `json:"date_text,omitempty"` // raw cell text as scraped
}

// CalendarSnapshot is a point-in-time copy of the publication calendar,
// persisted as data/calendar/calendar_<year>.json.
type CalendarSnapshot struct {
	SourceURL    string           `json:"source_url"`
	FetchedAt    time.Time        `json:"fetched_at"`
	Year         int              `json:"year"`
	Entries      []CalendarRecord `json:"entries"`
	TotalEntries int              `json:"total_entries"`
}
