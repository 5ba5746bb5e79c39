package library

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound is returned when a book id does not resolve to a book.
	ErrBookNotFound = errors.New("book not found")

	// ErrImpressionNotFound is returned when an impression id does not resolve
	// to a metadata record.
	ErrImpressionNotFound = errors.New("impression not found")

	// ErrDuplicateISBN is returned when creating a book whose normalized ISBN
	// is already in the catalog.
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

// MissingContentError is returned when an impression metadata record exists
// but its backing content file cannot be found. Content is never silently
// treated as empty, since that would hide data loss.
type MissingContentError struct {
	ImpressionID string
	Path         string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("impression %s has no content file at %s", e.ImpressionID, e.Path)
}

// MigrationError is returned when the v1 to v2 transform could not complete
// safely. The previously valid v1 state remains intact for retry.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("v1 to v2 migration failed: %v", e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
