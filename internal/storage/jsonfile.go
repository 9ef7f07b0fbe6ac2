// Package storage reads and writes question collections as JSON array files.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/superawat/Gate-QA/internal/domain"
)

// BackupInfix separates the file name from the backup timestamp.
const BackupInfix = ".backup-"

// Load reads a collection. The file must hold a JSON array; individual
// elements of the wrong shape decode to empty records.
func Load(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// LoadOptional is Load for inputs that may be absent; found is false when the file does not exist.
func LoadOptional(path string) (records []domain.Record, found bool, err error) {
	records, err = Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.NewDecoder(bufio.NewReader(r)).Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// Encode writes records as one compact JSON array without HTML escaping.
func Encode(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// SaveOptions control how Save replaces an existing file.
type SaveOptions struct {
	// Backup keeps a timestamped copy of the file being replaced.
	Backup bool
	// TimeFormat formats the backup timestamp (Go reference time layout).
	TimeFormat string
	// Now is the backup timestamp; zero means time.Now().
	Now time.Time
}

// Save atomically replaces path with records. When a backup is requested and
// path exists, the previous content is copied to path + ".backup-" + timestamp
// first and that backup path is returned.
func Save(path string, records []domain.Record, opts SaveOptions) (string, error) {
	var backupPath string
	if opts.Backup {
		var err error
		if backupPath, err = backup(path, opts); err != nil {
			return "", err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	if err = Encode(w, records); err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", tmpName, err)
	}

	if err = os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	return backupPath, nil
}

func backup(path string, opts SaveOptions) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open %s for backup: %w", path, err)
	}
	defer src.Close()

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	layout := opts.TimeFormat
	if layout == "" {
		layout = "20060102-150405"
	}
	backupPath := path + BackupInfix + now.Format(layout)

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup %s: %w", backupPath, err)
	}
	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copy backup %s: %w", backupPath, err)
	}
	if err = dst.Close(); err != nil {
		return "", fmt.Errorf("close backup %s: %w", backupPath, err)
	}

	if info, statErr := src.Stat(); statErr == nil {
		_ = os.Chtimes(backupPath, info.ModTime(), info.ModTime())
	}

	return backupPath, nil
}
