// config/catalog.go
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/urlpattern"
	"github.com/gewnthar/statbel-downloader/utils"
)

// Catalog is the parsed direct-links.yaml document.
type Catalog struct {
	Statistics []models.StatisticDefinition `yaml:"statistieken"`
}

// LoadCatalog reads and validates the statistic catalog. Entries without a
// download_directory get <defaultDir>/<label slug>. Every problem is returned
// as a *models.ConfigError.
//
// Duplicate calendar labels are not rejected here: the matcher reports them
// per statistic so that the other entries are still processed.
func LoadCatalog(fsys afero.Fs, path, defaultDir string) ([]models.StatisticDefinition, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &models.ConfigError{Source: path, Err: fmt.Errorf("failed to read catalog: %w", err)}
	}
	return ParseCatalog(data, path, defaultDir)
}

// ParseCatalog validates catalog yaml bytes. source names the document in errors.
func ParseCatalog(data []byte, source, defaultDir string) ([]models.StatisticDefinition, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, &models.ConfigError{Source: source, Err: fmt.Errorf("failed to unmarshal catalog: %w", err)}
	}
	if len(catalog.Statistics) == 0 {
		return nil, &models.ConfigError{Source: source, Err: fmt.Errorf("no statistieken defined")}
	}

	seenLabels := make(map[string]int)
	stems := make(map[string]string) // dir + slug -> label
	for i := range catalog.Statistics {
		stat := &catalog.Statistics[i]
		if err := normalizeStatistic(stat, defaultDir); err != nil {
			return nil, &models.ConfigError{Source: source, Err: fmt.Errorf("statistic #%d (%s): %w", i+1, stat.DisplayName(), err)}
		}

		seenLabels[stat.CalendarLabel]++
		if seenLabels[stat.CalendarLabel] == 2 {
			log.Printf("WARN Config: calendar label %q is defined more than once in %s\n", stat.CalendarLabel, source)
		}

		key := filepath.Join(stat.DownloadDirectory, utils.SlugifyLabel(stat.CalendarLabel))
		if other, ok := stems[key]; ok && other != stat.CalendarLabel {
			return nil, &models.ConfigError{Source: source, Err: fmt.Errorf("labels %q and %q map to the same file name in %s", other, stat.CalendarLabel, stat.DownloadDirectory)}
		}
		stems[key] = stat.CalendarLabel
	}

	log.Printf("Config: Loaded %d statistics from %s\n", len(catalog.Statistics), source)
	return catalog.Statistics, nil
}

func normalizeStatistic(stat *models.StatisticDefinition, defaultDir string) error {
	if strings.TrimSpace(stat.CalendarLabel) == "" {
		return fmt.Errorf("kalender_naam is required")
	}
	if stat.URL == "" && stat.URLPattern == "" {
		return fmt.Errorf("either url or url_pattern is required")
	}
	if err := urlpattern.Validate(stat.URLTemplate()); err != nil {
		return err
	}
	if stat.URLPattern != "" {
		for _, name := range stat.DatePlaceholders {
			if !urlpattern.IsKnown(name) {
				return fmt.Errorf("unknown date placeholder %q", name)
			}
		}
	}

	freq, err := models.ParseFrequency(string(stat.PublicationFrequency))
	if err != nil {
		return err
	}
	stat.PublicationFrequency = freq

	stat.DataType = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(stat.DataType), "."))
	if stat.DownloadDirectory == "" {
		stat.DownloadDirectory = filepath.Join(defaultDir, utils.SlugifyLabel(stat.CalendarLabel))
	}
	stat.DownloadDirectory = filepath.Clean(stat.DownloadDirectory)
	return nil
}
