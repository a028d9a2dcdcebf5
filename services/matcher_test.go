package services

import (
	"errors"
	"testing"
	"time"

	"github.com/gewnthar/statbel-downloader/models"
)

func d(year int, month time.Month, day int) models.Date {
	return models.NewDate(year, month, day)
}

func stat(label string) models.StatisticDefinition {
	return models.StatisticDefinition{
		Name:              label,
		CalendarLabel:     label,
		URL:               "https://example.test/" + label + ".zip",
		DownloadDirectory: "data/" + label,
	}
}

func snapshotOf(records ...models.CalendarRecord) models.CalendarSnapshot {
	return models.CalendarSnapshot{Year: 2024, Entries: records, TotalEntries: len(records)}
}

func TestMatchExactLabel(t *testing.T) {
	snapshot := snapshotOf(models.CalendarRecord{Label: "Bouwvergunningen", PublicationDate: d(2024, time.March, 1)})

	tests := []struct {
		label      string
		matched    bool
		suggestion string
	}{
		{"Bouwvergunningen", true, ""},
		{"bouwvergunningen", false, "Bouwvergunningen"},
		{"Bouwvergunningen ", false, "Bouwvergunningen"},
		{"Bouw vergunningen", false, ""},
		{"Werkloosheid", false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			res := Match([]models.StatisticDefinition{stat(tc.label)}, snapshot)
			if len(res) != 1 {
				t.Fatalf("got %d results, want 1", len(res))
			}
			if got := res[0].Record != nil; got != tc.matched {
				t.Errorf("matched = %v, want %v", got, tc.matched)
			}
			if res[0].Suggestion != tc.suggestion {
				t.Errorf("suggestion = %q, want %q", res[0].Suggestion, tc.suggestion)
			}
			if res[0].Err != nil {
				t.Errorf("unexpected error: %v", res[0].Err)
			}
		})
	}
}

func TestMatchKeepsCatalogOrder(t *testing.T) {
	snapshot := snapshotOf(
		models.CalendarRecord{Label: "C", PublicationDate: d(2024, time.January, 3)},
		models.CalendarRecord{Label: "A", PublicationDate: d(2024, time.January, 1)},
	)
	catalog := []models.StatisticDefinition{stat("A"), stat("B"), stat("C")}

	res := Match(catalog, snapshot)
	for i, want := range []string{"A", "B", "C"} {
		if res[i].Statistic.CalendarLabel != want {
			t.Errorf("result %d is %q, want %q", i, res[i].Statistic.CalendarLabel, want)
		}
	}
	if res[1].Record != nil {
		t.Errorf("B should be unmatched")
	}
	if !res[2].Record.PublicationDate.Equal(d(2024, time.January, 3)) {
		t.Errorf("C matched the wrong record: %+v", res[2].Record)
	}
}

func TestMatchAmbiguousDates(t *testing.T) {
	snapshot := snapshotOf(
		models.CalendarRecord{Label: "Werkloosheid", PublicationDate: d(2024, time.April, 2)},
		models.CalendarRecord{Label: "Werkloosheid", PublicationDate: d(2024, time.March, 1)},
		models.CalendarRecord{Label: "Bouwvergunningen", PublicationDate: d(2024, time.March, 1)},
		models.CalendarRecord{Label: "Bouwvergunningen", PublicationDate: d(2024, time.March, 1), Period: "dup"},
	)
	res := Match([]models.StatisticDefinition{stat("Werkloosheid"), stat("Bouwvergunningen")}, snapshot)

	var ambiguity *models.MatchAmbiguityError
	if !errors.As(res[0].Err, &ambiguity) {
		t.Fatalf("expected MatchAmbiguityError, got %v", res[0].Err)
	}
	if len(ambiguity.Dates) != 2 || !ambiguity.Dates[0].Equal(d(2024, time.March, 1)) {
		t.Errorf("dates = %v, want sorted [2024-03-01 2024-04-02]", ambiguity.Dates)
	}
	if res[0].Record != nil {
		t.Errorf("ambiguous match must not carry a record")
	}

	if res[1].Err != nil || res[1].Record == nil {
		t.Errorf("identical duplicate rows should collapse, got %+v", res[1])
	}
}

func TestMatchDuplicateCatalogLabel(t *testing.T) {
	snapshot := snapshotOf(models.CalendarRecord{Label: "A", PublicationDate: d(2024, time.May, 1)})
	res := Match([]models.StatisticDefinition{stat("A"), stat("B"), stat("A")}, snapshot)

	var ambiguity *models.MatchAmbiguityError
	for _, i := range []int{0, 2} {
		if !errors.As(res[i].Err, &ambiguity) {
			t.Errorf("result %d: expected MatchAmbiguityError, got %v", i, res[i].Err)
		}
	}
	if res[1].Err != nil {
		t.Errorf("B should be unaffected: %v", res[1].Err)
	}
}

func TestIsDue(t *testing.T) {
	record := &models.CalendarRecord{Label: "X", PublicationDate: d(2024, time.March, 1)}
	tests := []struct {
		name   string
		today  models.Date
		record *models.CalendarRecord
		want   bool
	}{
		{"day before", d(2024, time.February, 29), record, false},
		{"same day", d(2024, time.March, 1), record, true},
		{"day after", d(2024, time.March, 2), record, true},
		{"no record", d(2024, time.March, 2), nil, false},
	}
	for _, tc := range tests {
		if got := IsDue(tc.today, tc.record); got != tc.want {
			t.Errorf("%s: IsDue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUpcomingReleases(t *testing.T) {
	snapshot := snapshotOf(
		models.CalendarRecord{Label: "today", PublicationDate: d(2024, time.March, 1)},
		models.CalendarRecord{Label: "late", PublicationDate: d(2024, time.March, 8)},
		models.CalendarRecord{Label: "soon", PublicationDate: d(2024, time.March, 3)},
		models.CalendarRecord{Label: "far", PublicationDate: d(2024, time.March, 9)},
	)
	catalog := []models.StatisticDefinition{stat("today"), stat("late"), stat("soon"), stat("far"), stat("missing")}

	upcoming := UpcomingReleases(Match(catalog, snapshot), d(2024, time.March, 1), 7)
	var got []string
	for _, m := range upcoming {
		got = append(got, m.Statistic.CalendarLabel)
	}
	want := []string{"today", "soon", "late"}
	if len(got) != len(want) {
		t.Fatalf("upcoming = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("upcoming = %v, want %v", got, want)
			break
		}
	}
}
