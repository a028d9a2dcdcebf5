// config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig configures the optional download history store.
// An empty Driver disables the history.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	DSN      string `yaml:"dsn"`    // sqlite file path, or a full mysql DSN
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type PathsConfig struct {
	Catalog         string `yaml:"catalog"`
	CalendarDir     string `yaml:"calendar_dir"`
	DownloadBaseDir string `yaml:"download_base_dir"`
	ReportDir       string `yaml:"report_dir"`
}

type CalendarConfig struct {
	URL           string        `yaml:"url"`
	TableSelector string        `yaml:"table_selector"`
	TimeoutStr    string        `yaml:"timeout"`
	LookaheadDays int           `yaml:"lookahead_days"`
	Timeout       time.Duration `yaml:"-"` // Parsed duration
}

type DownloadConfig struct {
	TimeoutStr       string        `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	Concurrency      int           `yaml:"concurrency"`
	DefaultExtension string        `yaml:"default_extension"`
	Timeout          time.Duration `yaml:"-"` // Parsed duration
}

// ScheduleConfig holds cron expressions for the serve mode.
type ScheduleConfig struct {
	Daily  string `yaml:"daily"`
	Yearly string `yaml:"yearly"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Paths    PathsConfig    `yaml:"paths"`
	Calendar CalendarConfig `yaml:"calendar"`
	Download DownloadConfig `yaml:"download"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Timezone string         `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // Parsed Timezone
}

// Default returns the configuration used when a key is absent from config.yaml.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Paths: PathsConfig{
			Catalog:         "direct-links.yaml",
			CalendarDir:     "data/calendar",
			DownloadBaseDir: "data/downloads",
			ReportDir:       "data/reports",
		},
		Calendar: CalendarConfig{
			URL:           "https://statbel.fgov.be/nl/calendar",
			TableSelector: "table",
			TimeoutStr:    "30s",
			LookaheadDays: 7,
		},
		Download: DownloadConfig{
			TimeoutStr:       "60s",
			UserAgent:        "statbel-downloader",
			Concurrency:      1,
			DefaultExtension: ".zip",
		},
		Schedule: ScheduleConfig{
			Daily:  "0 6 * * *",
			Yearly: "0 5 2 1 *",
		},
		Timezone: "UTC",
	}
}

// LoadEnv loads KEY=value pairs from an .env file into the process
// environment. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads config.yaml, applies defaults and STATBEL_* environment
// overrides, and parses durations and the time zone. An empty path means
// "defaults and environment only".
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"STATBEL_CATALOG":        &cfg.Paths.Catalog,
		"STATBEL_CALENDAR_DIR":   &cfg.Paths.CalendarDir,
		"STATBEL_DOWNLOAD_DIR":   &cfg.Paths.DownloadBaseDir,
		"STATBEL_REPORT_DIR":     &cfg.Paths.ReportDir,
		"STATBEL_CALENDAR_URL":   &cfg.Calendar.URL,
		"STATBEL_TIMEZONE":       &cfg.Timezone,
		"STATBEL_SERVER_PORT":    &cfg.Server.Port,
		"STATBEL_DB_DRIVER":      &cfg.Database.Driver,
		"STATBEL_DB_DSN":         &cfg.Database.DSN,
		"STATBEL_DB_HOST":        &cfg.Database.Host,
		"STATBEL_DB_PORT":        &cfg.Database.Port,
		"STATBEL_DB_USER":        &cfg.Database.User,
		"STATBEL_DB_PASSWORD":    &cfg.Database.Password,
		"STATBEL_DB_NAME":        &cfg.Database.DBName,
		"STATBEL_SCHEDULE_DAILY": &cfg.Schedule.Daily,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("STATBEL_DOWNLOAD_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Download.Concurrency = n
		}
	}
}

func (cfg *Config) finalize() error {
	var err error

	// Parse durations
	if cfg.Calendar.TimeoutStr != "" {
		cfg.Calendar.Timeout, err = time.ParseDuration(cfg.Calendar.TimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse calendar timeout: %w", err)
		}
	} else {
		cfg.Calendar.Timeout = 30 * time.Second
	}
	if cfg.Download.TimeoutStr != "" {
		cfg.Download.Timeout, err = time.ParseDuration(cfg.Download.TimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse download timeout: %w", err)
		}
	} else {
		cfg.Download.Timeout = 60 * time.Second
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	if cfg.Download.Concurrency < 1 {
		cfg.Download.Concurrency = 1
	}
	if cfg.Calendar.LookaheadDays < 0 {
		cfg.Calendar.LookaheadDays = 0
	}
	if cfg.Download.DefaultExtension != "" && cfg.Download.DefaultExtension[0] != '.' {
		cfg.Download.DefaultExtension = "." + cfg.Download.DefaultExtension
	}

	switch cfg.Database.Driver {
	case "", "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q (use sqlite or mysql)", cfg.Database.Driver)
	}
	return nil
}
