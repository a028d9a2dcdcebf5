// scraper/calendar_scraper.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/statbel-downloader/models"
)

// CalendarScraper reads the Statbel publication calendar page.
type CalendarScraper struct {
	client        *http.Client
	pageURL       string
	tableSelector string
	userAgent     string
}

// NewCalendarScraper creates a scraper for pageURL. tableSelector selects the
// tables holding calendar rows ("table" when empty).
func NewCalendarScraper(pageURL, tableSelector, userAgent string, timeout time.Duration) *CalendarScraper {
	if tableSelector == "" {
		tableSelector = "table"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CalendarScraper{
		client:        &http.Client{Timeout: timeout},
		pageURL:       pageURL,
		tableSelector: tableSelector,
		userAgent:     userAgent,
	}
}

// URL returns the calendar page address.
func (s *CalendarScraper) URL() string { return s.pageURL }

// FetchCalendar downloads the calendar page and parses its rows.
func (s *CalendarScraper) FetchCalendar(ctx context.Context) ([]models.CalendarRecord, error) {
	log.Printf("Scraper: Fetching publication calendar from %s (tables: '%s')\n", s.pageURL, s.tableSelector)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", s.pageURL, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", s.pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", s.pageURL, res.StatusCode)
	}

	records, err := ParseCalendarHTML(res.Body, s.tableSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar from %s: %w", s.pageURL, err)
	}
	return records, nil
}

// ParseCalendarHTML extracts calendar rows from an HTML document. A row is
// kept when it has at least two cells, both non-empty, and the first cell
// holds a "<day> <month> <year>" date; the optional third cell is the period.
// Header rows and other tables are skipped silently, rows whose date cannot
// be parsed are skipped with a warning. Finding no rows at all is an error,
// since it usually means the page layout changed.
func ParseCalendarHTML(r io.Reader, tableSelector string) ([]models.CalendarRecord, error) {
	if tableSelector == "" {
		tableSelector = "table"
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []models.CalendarRecord
	doc.Find(tableSelector).Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		dateText := cleanCellText(cells.Eq(0).Text())
		label := cleanCellText(cells.Eq(1).Text())
		period := ""
		if cells.Length() > 2 {
			period = cleanCellText(cells.Eq(2).Text())
		}

		if dateText == "" || label == "" || !looksLikeDutchDate(dateText) {
			return
		}

		date, err := ParseDutchDate(dateText)
		if err != nil {
			log.Printf("WARN Scraper: Skipping calendar row %q - %q: %v\n", dateText, label, err)
			return
		}

		records = append(records, models.CalendarRecord{
			Label:           label,
			PublicationDate: date,
			Period:          period,
			DateText:        dateText,
		})
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("no calendar entries found with selector '%s'; the page structure may have changed", tableSelector)
	}

	log.Printf("Scraper: Parsed %d calendar entries\n", len(records))
	return records, nil
}

// cleanCellText trims a cell and collapses inner whitespace, so labels
// compare the same way across calendar refreshes.
func cleanCellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
