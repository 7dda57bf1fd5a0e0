package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"roster-server-go/models"
)

// FileStore persists the snapshot as a JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file location
func (f *FileStore) Path() string {
	return f.path
}

type fileSnapshot struct {
	Students *[]models.Student `json:"students"`
	Classes  *[]string         `json:"classes"`
}

// Load reads the snapshot file. A missing file yields the default snapshot.
func (f *FileStore) Load() (models.Snapshot, error) {
	const op = "Load"
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("no saved roster found, starting from defaults", "path", f.path)
			return models.DefaultSnapshot(), nil
		}
		return models.Snapshot{}, wrapError(op, ErrCorruptState, "failed to read "+f.path, err)
	}

	var raw fileSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Snapshot{}, wrapError(op, ErrCorruptState, "malformed roster file "+f.path, err)
	}
	if raw.Students == nil || raw.Classes == nil {
		return models.Snapshot{}, newError(op, ErrCorruptState, "roster file %s must contain students and classes", f.path)
	}

	snapshot := normalize(models.Snapshot{Students: *raw.Students, Classes: *raw.Classes})
	if err := checkSnapshot(op, snapshot); err != nil {
		return models.Snapshot{}, err
	}
	return snapshot, nil
}

// Save writes the snapshot to a temp file beside the target and renames it
// into place, so a crash never leaves a truncated file behind.
func (f *FileStore) Save(snapshot models.Snapshot) error {
	data, err := json.MarshalIndent(normalize(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename has happened
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// MoveAside renames an unreadable snapshot file to <path>.corrupt-<timestamp>
// and returns the new name, so starting over from defaults loses nothing.
func (f *FileStore) MoveAside(now time.Time) (string, error) {
	target := f.path + ".corrupt-" + now.Format("20060102_150405")
	if err := os.Rename(f.path, target); err != nil {
		return "", fmt.Errorf("failed to move %s aside: %w", f.path, err)
	}
	return target, nil
}
