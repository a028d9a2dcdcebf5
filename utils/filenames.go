// utils/filenames.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	underscoreRun    = regexp.MustCompile(`_+`)
)

// SlugifyLabel turns a calendar label into a stable file-name stem.
// Case is preserved, diacritics are stripped, whitespace and characters that
// are invalid in file names become underscores:
//
//	"Bouwvergunningen"               -> "Bouwvergunningen"
//	"Index van de consumptieprijzen" -> "Index_van_de_consumptieprijzen"
//	"Bevolking: België"              -> "Bevolking_Belgie"
func SlugifyLabel(label string) string {
	s := stripDiacritics(strings.TrimSpace(label))
	s = invalidFileChars.ReplaceAllString(s, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "statistic"
	}
	return s
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
