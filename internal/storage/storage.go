package storage

import (
	"fmt"

	"booklog/internal/models"
)

// Repository defines the interface for collection persistence. Each Load
// returns the full ordered collection and each Save replaces it as a whole;
// there is no append or patch mode. Implementations own the only I/O boundary
// of the persistence layer.
type Repository interface {
	// Book collection
	LoadBooks() ([]models.Book, error)
	SaveBooks(books []models.Book) error

	// Impressions index (new layout, metadata only)
	LoadImpressions() ([]models.Impression, error)
	SaveImpressions(impressions []models.Impression) error

	// Status change history
	LoadStatusHistory() ([]models.StatusHistory, error)
	SaveStatusHistory(history []models.StatusHistory) error
}

// CorruptDataError is returned when a collection file exists but cannot be
// parsed. A missing file is not corruption: Load treats it as an empty,
// never-populated collection.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("collection file %s is corrupted: %v", e.Path, e.Err)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}
