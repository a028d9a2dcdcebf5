// Package urlpattern resolves download URL templates against a calendar
// release. Resolution is a pure function of (template, record).
//
// Supported placeholders:
//
//	{datum}               release date as YYYYMMDD
//	{date}                release date as YYYY-MM-DD
//	{jaar}, {year}        YYYY
//	{maand}, {month}      MM
//	{dag}, {day}          DD
//	{kwartaal}, {quarter} 1..4
//	{periode}, {period}   period text of the calendar row, path-escaped
package urlpattern

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gewnthar/statbel-downloader/models"
)

var placeholderRegex = regexp.MustCompile(`\{([a-z]+)\}`)

var resolvers = map[string]func(models.CalendarRecord) (string, error){
	"datum":    func(r models.CalendarRecord) (string, error) { return r.PublicationDate.Format("20060102"), nil },
	"date":     func(r models.CalendarRecord) (string, error) { return r.PublicationDate.Format(models.DateLayout), nil },
	"jaar":     year,
	"year":     year,
	"maand":    month,
	"month":    month,
	"dag":      day,
	"day":      day,
	"kwartaal": quarter,
	"quarter":  quarter,
	"periode":  period,
	"period":   period,
}

func year(r models.CalendarRecord) (string, error)  { return r.PublicationDate.Format("2006"), nil }
func month(r models.CalendarRecord) (string, error) { return r.PublicationDate.Format("01"), nil }
func day(r models.CalendarRecord) (string, error)   { return r.PublicationDate.Format("02"), nil }

func quarter(r models.CalendarRecord) (string, error) {
	return strconv.Itoa(r.PublicationDate.Quarter()), nil
}

func period(r models.CalendarRecord) (string, error) {
	p := strings.TrimSpace(r.Period)
	if p == "" {
		return "", fmt.Errorf("calendar entry %q has no period for {periode}", r.Label)
	}
	return url.PathEscape(p), nil
}

// Placeholders returns the placeholder names used in template, in order of appearance.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderRegex.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// IsKnown reports whether name is a supported placeholder.
func IsKnown(name string) bool {
	_, ok := resolvers[strings.Trim(name, "{}")]
	return ok
}

// Validate checks that every placeholder in template is supported.
func Validate(template string) error {
	for _, name := range Placeholders(template) {
		if !IsKnown(name) {
			return fmt.Errorf("unknown placeholder {%s} in %q", name, template)
		}
	}
	return nil
}

// Resolve substitutes the release described by record into template.
// A template without placeholders is returned unchanged.
func Resolve(template string, record models.CalendarRecord) (string, error) {
	var resolveErr error
	out := placeholderRegex.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		fn, ok := resolvers[name]
		if !ok {
			if resolveErr == nil {
				resolveErr = fmt.Errorf("unknown placeholder %s in %q", m, template)
			}
			return m
		}
		v, err := fn(record)
		if err != nil && resolveErr == nil {
			resolveErr = err
		}
		return v
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}
