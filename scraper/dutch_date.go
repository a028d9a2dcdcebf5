// scraper/dutch_date.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gewnthar/statbel-downloader/models"
)

// Matches "1 december 2025" and abbreviations such as "1 dec 2025" or "1 dec. 2025".
var dutchDateRegex = regexp.MustCompile(`(\d{1,2})\s+([a-zA-Z]+)\.?\s+(\d{4})`)

var dutchMonths = []struct {
	name  string
	month time.Month
}{
	{"januari", time.January},
	{"februari", time.February},
	{"maart", time.March},
	{"mrt", time.March},
	{"april", time.April},
	{"mei", time.May},
	{"juni", time.June},
	{"juli", time.July},
	{"augustus", time.August},
	{"september", time.September},
	{"oktober", time.October},
	{"november", time.November},
	{"december", time.December},
}

// looksLikeDutchDate reports whether text contains a "<day> <month> <year>" pattern.
func looksLikeDutchDate(text string) bool {
	return dutchDateRegex.MatchString(text)
}

// ParseDutchDate extracts the first "<day> <month name> <year>" date from text.
// Month names may be abbreviated ("dec", "sept", "mrt"); "ju" alone is rejected
// because it is ambiguous between juni and juli.
func ParseDutchDate(text string) (models.Date, error) {
	matches := dutchDateRegex.FindStringSubmatch(strings.ToLower(text))
	if len(matches) < 4 {
		return models.Date{}, fmt.Errorf("no date found in %q", text)
	}

	day, _ := strconv.Atoi(matches[1])
	year, _ := strconv.Atoi(matches[3])
	monthName := matches[2]

	var found []time.Month
	for _, m := range dutchMonths {
		if strings.HasPrefix(m.name, monthName) {
			found = append(found, m.month)
		}
	}
	if len(found) != 1 {
		return models.Date{}, fmt.Errorf("unknown or ambiguous month %q in %q", monthName, text)
	}

	d := models.NewDate(year, found[0], day)
	if d.Day() != day || d.Month() != found[0] {
		return models.Date{}, fmt.Errorf("invalid day %d for %s %d in %q", day, found[0], year, text)
	}
	return d, nil
}
