// services/matcher.go
package services

import (
	"sort"
	"strings"

	"github.com/gewnthar/statbel-downloader/models"
)

// MatchResult pairs a catalog entry with the calendar row carrying its label.
type MatchResult struct {
	Statistic models.StatisticDefinition
	Record    *models.CalendarRecord // nil when the label is not on the calendar
	Err       error                  // *models.MatchAmbiguityError when the join is not unique

	// Suggestion is a calendar label equal to the statistic's label after
	// trimming and case folding. It is only set for unmatched statistics and
	// hints at wording drift between the catalog and the calendar.
	Suggestion string
}

// Match joins every catalog entry to the snapshot by exact, case-sensitive
// label equality. It returns one result per catalog entry, in catalog order.
//
// Rows with the same label and the same date count as one row. A label
// listed with different dates, or defined twice in the catalog, yields a
// *models.MatchAmbiguityError instead of a record.
func Match(catalog []models.StatisticDefinition, snapshot models.CalendarSnapshot) []MatchResult {
	byLabel := make(map[string][]models.CalendarRecord)
	folded := make(map[string]string)
	for _, rec := range snapshot.Entries {
		byLabel[rec.Label] = appendDistinctDate(byLabel[rec.Label], rec)
		key := foldLabel(rec.Label)
		if _, ok := folded[key]; !ok {
			folded[key] = rec.Label
		}
	}

	catalogCount := make(map[string]int)
	for _, stat := range catalog {
		catalogCount[stat.CalendarLabel]++
	}

	results := make([]MatchResult, len(catalog))
	for i, stat := range catalog {
		res := MatchResult{Statistic: stat}
		records := byLabel[stat.CalendarLabel]

		switch {
		case catalogCount[stat.CalendarLabel] > 1:
			res.Err = &models.MatchAmbiguityError{Label: stat.CalendarLabel}
		case len(records) == 0:
			if suggestion, ok := folded[foldLabel(stat.CalendarLabel)]; ok {
				res.Suggestion = suggestion
			}
		case len(records) > 1:
			res.Err = &models.MatchAmbiguityError{Label: stat.CalendarLabel, Dates: recordDates(records)}
		default:
			rec := records[0]
			res.Record = &rec
		}
		results[i] = res
	}
	return results
}

func appendDistinctDate(records []models.CalendarRecord, rec models.CalendarRecord) []models.CalendarRecord {
	for _, existing := range records {
		if existing.PublicationDate.Equal(rec.PublicationDate) {
			return records
		}
	}
	return append(records, rec)
}

func recordDates(records []models.CalendarRecord) []models.Date {
	dates := make([]models.Date, len(records))
	for i, r := range records {
		dates[i] = r.PublicationDate
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func foldLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
