package services

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/models"
)

func TestLedgerRecordAndLookup(t *testing.T) {
	memFs := afero.NewMemMapFs()
	ledger := NewLedger(memFs, ".zip")
	s := stat("Bouwvergunningen")
	release := d(2024, time.March, 1)

	if _, found, err := ledger.AlreadyDownloaded(s, release); err != nil || found {
		t.Fatalf("missing directory: found=%v err=%v", found, err)
	}

	path, err := ledger.Record(s, release, ".xlsx", []byte("payload"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if want := filepath.Join("data/Bouwvergunningen", "Bouwvergunningen_2024-03-01.xlsx"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	got, found, err := ledger.AlreadyDownloaded(s, release)
	if err != nil || !found || got != path {
		t.Errorf("AlreadyDownloaded = %q, %v, %v", got, found, err)
	}

	if _, found, _ := ledger.AlreadyDownloaded(s, d(2024, time.April, 1)); found {
		t.Errorf("a different release date must not be suppressed")
	}

	leftovers, _ := afero.Glob(memFs, filepath.Join("data/Bouwvergunningen", "*.part"))
	hidden, _ := afero.Glob(memFs, filepath.Join("data/Bouwvergunningen", ".*"))
	if len(leftovers)+len(hidden) != 0 {
		t.Errorf("temporary files left behind: %v %v", leftovers, hidden)
	}
}

func TestLedgerNeverOverwrites(t *testing.T) {
	memFs := afero.NewMemMapFs()
	ledger := NewLedger(memFs, ".zip")
	s := stat("X")
	release := d(2024, time.March, 1)

	path, err := ledger.Record(s, release, ".zip", []byte("first"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	_, err = ledger.Record(s, release, ".zip", []byte("second"))
	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) || !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected StorageError wrapping ErrExist, got %v", err)
	}
	data, _ := afero.ReadFile(memFs, path)
	if string(data) != "first" {
		t.Errorf("file was overwritten: %q", data)
	}
}

func TestLedgerIgnoresPartialAndLookalikeFiles(t *testing.T) {
	memFs := afero.NewMemMapFs()
	ledger := NewLedger(memFs, ".zip")
	s := stat("CPI")
	release := d(2024, time.March, 1)
	dir := s.DownloadDirectory

	for _, name := range []string{
		".CPI_2024-03-01.zip.part",
		"CPI_2024-03-01.zip.part",
		"CPI_2024-03-012.zip",
		"CPI_extra_2024-03-01.zip",
	} {
		if err := afero.WriteFile(memFs, filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := memFs.MkdirAll(filepath.Join(dir, "CPI_2024-03-01.d"), 0o755); err != nil {
		t.Fatal(err)
	}

	if path, found, err := ledger.AlreadyDownloaded(s, release); err != nil || found {
		t.Errorf("AlreadyDownloaded = %q, %v, %v; want not found", path, found, err)
	}

	if err := afero.WriteFile(memFs, filepath.Join(dir, "CPI_2024-03-01.csv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := ledger.AlreadyDownloaded(s, release); !found {
		t.Errorf("a completed file with another extension is still the same release")
	}
}

func TestLedgerStorageFailure(t *testing.T) {
	ledger := NewLedger(afero.NewReadOnlyFs(afero.NewMemMapFs()), ".zip")
	_, err := ledger.Record(stat("X"), d(2024, time.March, 1), ".zip", []byte("x"))
	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Op != "create directory" {
		t.Errorf("op = %q", storageErr.Op)
	}
}

func TestLedgerExtension(t *testing.T) {
	ledger := NewLedger(afero.NewMemMapFs(), ".zip")
	tests := []struct {
		url, dataType, want string
	}{
		{"https://statbel.fgov.be/files/TF_PERMITS.xlsx", "zip", ".xlsx"},
		{"https://statbel.fgov.be/files/data.csv?download=1", "", ".csv"},
		{"https://statbel.fgov.be/download/1234", "xlsx", ".xlsx"},
		{"https://statbel.fgov.be/download/1234", "", ".zip"},
		{"https://statbel.fgov.be/download/v1.2/file", "", ".zip"},
	}
	for _, tc := range tests {
		if got := ledger.Extension(tc.url, tc.dataType); got != tc.want {
			t.Errorf("Extension(%q, %q) = %q, want %q", tc.url, tc.dataType, got, tc.want)
		}
	}
}
