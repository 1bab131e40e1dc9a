// Package jsonfile persists the event collection as a single serialized
// JSON blob on disk, the moral equivalent of the browser's key-value
// storage.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/persistence"
)

// Store reads and writes the whole collection at the configured path.
type Store struct {
	path string
}

// New returns a store backed by the given file path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: path is empty")
	}
	return &Store{path: path}, nil
}

// Save writes the full collection atomically: the blob is written to a
// temporary file in the same directory and renamed over the target.
func (s *Store) Save(ctx context.Context, events []calendar.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(persistence.FromEvents(events))
	if err != nil {
		return fmt.Errorf("jsonfile: encode events: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("jsonfile: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".events-*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("jsonfile: chmod: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("jsonfile: rename: %w", err)
	}

	return nil
}

// Load restores the collection. A missing file yields an empty collection
// rather than an error, matching first-run behavior.
func (s *Store) Load(ctx context.Context) ([]calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonfile: read: %w", err)
	}

	var records []persistence.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("jsonfile: decode events: %w", err)
	}

	return persistence.ToEvents(records), nil
}
