// models/statistic.go
package models

import (
	"fmt"
	"strings"
)

// Frequency is how often a statistic is published.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

var frequencyAliases = map[string]Frequency{
	"monthly":         FrequencyMonthly,
	"maandelijks":     FrequencyMonthly,
	"quarterly":       FrequencyQuarterly,
	"driemaandelijks": FrequencyQuarterly,
	"kwartaal":        FrequencyQuarterly,
	"yearly":          FrequencyYearly,
	"annual":          FrequencyYearly,
	"jaarlijks":       FrequencyYearly,
}

// ParseFrequency accepts the English names and their Dutch equivalents.
// An empty string is allowed and means "unspecified".
func ParseFrequency(s string) (Frequency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	f, ok := frequencyAliases[s]
	if !ok {
		return "", fmt.Errorf("unknown publication frequency %q", s)
	}
	return f, nil
}

// MetadataField describes one column of a downloaded dataset. Descriptive only.
type MetadataField struct {
	Field       string `yaml:"field" json:"field"`
	Description string `yaml:"description" json:"description"`
}

// StatisticDefinition is one tracked statistic from the catalog (direct-links.yaml).
type StatisticDefinition struct {
	Name                 string          `yaml:"name" json:"name"`
	CalendarLabel        string          `yaml:"kalender_naam" json:"kalender_naam"`
	URL                  string          `yaml:"url" json:"url,omitempty"`
	URLPattern           string          `yaml:"url_pattern" json:"url_pattern,omitempty"`
	DatePlaceholders     []string        `yaml:"date_placeholders" json:"date_placeholders,omitempty"`
	Metadata             []MetadataField `yaml:"metadata" json:"metadata,omitempty"`
	DataType             string          `yaml:"data_type" json:"data_type,omitempty"`
	Delimiter            string          `yaml:"delimiter" json:"delimiter,omitempty"`
	PublicationFrequency Frequency       `yaml:"publication_frequency" json:"publication_frequency,omitempty"`
	DownloadDirectory    string          `yaml:"download_directory" json:"download_directory"`
}

// DisplayName falls back to the calendar label when no name is configured.
func (s StatisticDefinition) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.CalendarLabel
}

// URLTemplate returns the pattern when one is set, the static URL otherwise.
func (s StatisticDefinition) URLTemplate() string {
	if s.URLPattern != "" {
		return s.URLPattern
	}
	return s.URL
}
