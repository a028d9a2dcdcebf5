// services/ledger.go
package services

import (
	"errors"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/utils"
)

const partSuffix = ".part"

// Ledger answers "was this release already downloaded?" from the files in
// each statistic's download directory. Nothing is cached between calls.
type Ledger struct {
	fs         afero.Fs
	defaultExt string
}

func NewLedger(fsys afero.Fs, defaultExt string) *Ledger {
	return &Ledger{fs: fsys, defaultExt: defaultExt}
}

// LedgerKey is the file stem identifying one release of a statistic:
// <slug(label)>_<YYYY-MM-DD>.
func LedgerKey(stat models.StatisticDefinition, release models.Date) string {
	return utils.SlugifyLabel(stat.CalendarLabel) + "_" + release.Format(models.DateLayout)
}

// AlreadyDownloaded returns the path of the ledger file for the release, if
// any. A missing directory means nothing was downloaded yet.
func (l *Ledger) AlreadyDownloaded(stat models.StatisticDefinition, release models.Date) (string, bool, error) {
	dir := stat.DownloadDirectory
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &models.StorageError{Op: "read directory", Path: dir, Err: err}
	}

	key := LedgerKey(stat, release)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isLedgerFile(e.Name(), key) {
			return filepath.Join(dir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

func isLedgerFile(name, key string) bool {
	if strings.HasSuffix(name, partSuffix) {
		return false
	}
	return name == key || strings.HasPrefix(name, key+".")
}

// Record writes data as the ledger file for the release and returns its path.
// The bytes go to a hidden temporary file first and are renamed into place,
// so a crash mid-write leaves nothing that AlreadyDownloaded would match.
// An existing ledger file is never overwritten.
func (l *Ledger) Record(stat models.StatisticDefinition, release models.Date, ext string, data []byte) (string, error) {
	dir := stat.DownloadDirectory
	if err := l.fs.MkdirAll(dir, 0o755); err != nil {
		return "", &models.StorageError{Op: "create directory", Path: dir, Err: err}
	}

	name := LedgerKey(stat, release) + ext
	target := filepath.Join(dir, name)
	exists, err := afero.Exists(l.fs, target)
	if err != nil {
		return "", &models.StorageError{Op: "stat", Path: target, Err: err}
	}
	if exists {
		return "", &models.StorageError{Op: "write", Path: target, Err: fs.ErrExist}
	}

	tmp := filepath.Join(dir, "."+name+partSuffix)
	if err := afero.WriteFile(l.fs, tmp, data, 0o644); err != nil {
		_ = l.fs.Remove(tmp)
		return "", &models.StorageError{Op: "write", Path: tmp, Err: err}
	}
	if err := l.fs.Rename(tmp, target); err != nil {
		_ = l.fs.Remove(tmp)
		return "", &models.StorageError{Op: "rename", Path: target, Err: err}
	}
	return target, nil
}

// Extension picks the file extension for a download: the URL path suffix,
// else ".<data_type>", else the ledger default.
func (l *Ledger) Extension(rawURL, dataType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && ext != "." {
			return ext
		}
	}
	if dataType != "" {
		return "." + dataType
	}
	return l.defaultExt
}

