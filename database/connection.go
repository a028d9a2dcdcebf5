// database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
	_ "modernc.org/sqlite"           // pure-Go SQLite driver, registers "sqlite"

	"github.com/gewnthar/statbel-downloader/config"
)

// Store is the download history database.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the history database described by cfg and creates the
// statistic_downloads table when missing. It returns nil, nil when no driver
// is configured.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Driver == "" {
		return nil, nil
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool settings
	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Ping the database to verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{DB: db, driver: cfg.Driver}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Database: Connected to %s history store.\n", cfg.Driver)
	return store, nil
}

func buildDSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.DSN == "" {
			return "data/statbel.db", nil
		}
		return cfg.DSN, nil
	case "mysql":
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		// DSN: username:password@protocol(address)/dbname?param=value
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host + ":" + cfg.Port
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Ping is used by the health endpoint.
func (s *Store) Ping() error {
	return s.DB.Ping()
}

// Close closes the database connection pool.
// Typically called on application shutdown.
func (s *Store) Close() {
	if s != nil && s.DB != nil {
		s.DB.Close()
		log.Println("Database: Connection closed.")
	}
}
