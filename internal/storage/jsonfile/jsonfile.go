// Package jsonfile persists each collection as one flat JSON file in a data
// directory. Saves are atomic: the snapshot is written to a temporary file in
// the same directory and renamed over the target, so a crash mid-write leaves
// either the old complete file or the new complete file, never a truncated one.
//
// The store provides no cross-process locking. If two processes save the same
// collection concurrently the last writer wins; callers that need stronger
// guarantees must serialize access in a single long-lived process.
package jsonfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"booklog/internal/models"
	"booklog/internal/storage"
)

const (
	booksFile       = "books.json"
	impressionsFile = "impressionsIndex.json"
	historyFile     = "statusHistory.json"

	// v1 inline-content impressions, read-only input to the migration
	impressionsV1File = "impressions.json"

	impressionsDirName = "impressions"
)

// Store is the flat-file implementation of storage.Repository.
type Store struct {
	dir string
}

// New creates a store rooted at dataDir, creating the directory and the
// impression content subdirectory if needed.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, impressionsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dataDir}, nil
}

// Dir returns the data directory root.
func (s *Store) Dir() string {
	return s.dir
}

// ImpressionsDir returns the directory holding impression content files.
func (s *Store) ImpressionsDir() string {
	return filepath.Join(s.dir, impressionsDirName)
}

// load reads one collection file and decodes it. A missing file means the
// collection was never populated and decodes as empty. A present but
// undecodable file is reported as corruption, never as an empty result.
func load[T any](path string, decode func([]byte) ([]T, error)) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := decode(data)
	if err != nil {
		return nil, &storage.CorruptDataError{Path: path, Err: err}
	}
	return records, nil
}

// save writes the full snapshot atomically via a temp file and rename.
func save(path string, v any) error {
	data, err := models.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadBooks loads the new-layout book collection.
func (s *Store) LoadBooks() ([]models.Book, error) {
	return load(filepath.Join(s.dir, booksFile), models.DecodeBooks)
}

// SaveBooks replaces the book collection.
func (s *Store) SaveBooks(books []models.Book) error {
	return save(filepath.Join(s.dir, booksFile), books)
}

// LoadImpressions loads the new-layout impressions index.
func (s *Store) LoadImpressions() ([]models.Impression, error) {
	return load(filepath.Join(s.dir, impressionsFile), models.DecodeImpressions)
}

// SaveImpressions replaces the impressions index.
func (s *Store) SaveImpressions(impressions []models.Impression) error {
	return save(filepath.Join(s.dir, impressionsFile), impressions)
}

// LoadStatusHistory loads the status change history.
func (s *Store) LoadStatusHistory() ([]models.StatusHistory, error) {
	return load(filepath.Join(s.dir, historyFile), models.DecodeStatusHistory)
}

// SaveStatusHistory replaces the status change history.
func (s *Store) SaveStatusHistory(history []models.StatusHistory) error {
	return save(filepath.Join(s.dir, historyFile), history)
}

// LoadBooksLenient loads the book collection tolerating records without a
// status or cover URL. The migration engine uses it to inspect old-layout data.
func (s *Store) LoadBooksLenient() ([]models.Book, error) {
	return load(filepath.Join(s.dir, booksFile), models.DecodeBooksV1)
}

// LoadImpressionsV1 loads the old-layout inline-content impressions file.
// The file is migration input only and is never rewritten.
func (s *Store) LoadImpressionsV1() ([]models.ImpressionV1, error) {
	return load(filepath.Join(s.dir, impressionsV1File), models.DecodeImpressionsV1)
}

// StatusHistoryExists reports whether the status history file has been
// initialized. Its absence marks an old-layout dataset.
func (s *Store) StatusHistoryExists() bool {
	_, err := os.Stat(filepath.Join(s.dir, historyFile))
	return err == nil
}
