package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ValidationError reports a record that failed schema validation: a required
// field was absent or a status value was outside the enumerated set.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: field %q %s", e.Entity, e.Field, e.Reason)
}

func missing(entity, field string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: "is required"}
}

// bookRecord shadows Book with pointer fields so decoding can tell an absent
// field from a zero value.
type bookRecord struct {
	ID              *string    `json:"id"`
	ISBN            *string    `json:"isbn"`
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	Publisher       *string    `json:"publisher"`
	PublicationDate *string    `json:"publicationDate"`
	Description     *string    `json:"description"`
	CoverURL        *string    `json:"coverUrl"`
	Status          *string    `json:"status"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

func (r bookRecord) toBook() Book {
	b := Book{CoverURL: r.CoverURL}
	if r.ID != nil {
		b.ID = *r.ID
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.Publisher != nil {
		b.Publisher = *r.Publisher
	}
	if r.PublicationDate != nil {
		b.PublicationDate = *r.PublicationDate
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.Status != nil {
		b.Status = Status(*r.Status)
	}
	if r.CreatedAt != nil {
		b.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		b.UpdatedAt = *r.UpdatedAt
	}
	return b
}

// DecodeBooks decodes a new-layout (v2) books collection. Every record must
// carry id, isbn, title, timestamps and a valid status; decoding never
// substitutes defaults.
func DecodeBooks(data []byte) ([]Book, error) {
	var records []bookRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(records))
	for _, r := range records {
		switch {
		case r.ID == nil:
			return nil, missing("book", "id")
		case r.ISBN == nil:
			return nil, missing("book", "isbn")
		case r.Title == nil:
			return nil, missing("book", "title")
		case r.Status == nil:
			return nil, missing("book", "status")
		case r.CreatedAt == nil:
			return nil, missing("book", "createdAt")
		case r.UpdatedAt == nil:
			return nil, missing("book", "updatedAt")
		}
		if !Status(*r.Status).Valid() {
			return nil, &ValidationError{Entity: "book", Field: "status", Reason: fmt.Sprintf("has unknown value %q", *r.Status)}
		}
		books = append(books, r.toBook())
	}
	return books, nil
}

// DecodeBooksV1 decodes a books collection leniently for the migration engine:
// status and coverUrl may be absent, in which case they come back as the zero
// status and a nil cover URL. All other required fields are still enforced.
func DecodeBooksV1(data []byte) ([]Book, error) {
	var records []bookRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(records))
	for _, r := range records {
		switch {
		case r.ID == nil:
			return nil, missing("book", "id")
		case r.ISBN == nil:
			return nil, missing("book", "isbn")
		case r.Title == nil:
			return nil, missing("book", "title")
		}
		if r.Status != nil && !Status(*r.Status).Valid() {
			return nil, &ValidationError{Entity: "book", Field: "status", Reason: fmt.Sprintf("has unknown value %q", *r.Status)}
		}
		books = append(books, r.toBook())
	}
	return books, nil
}

type impressionRecord struct {
	ID        *string    `json:"id"`
	BookID    *string    `json:"bookId"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	FilePath  *string    `json:"filePath"`
}

// DecodeImpressions decodes the new-layout impressions index.
func DecodeImpressions(data []byte) ([]Impression, error) {
	var records []impressionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	impressions := make([]Impression, 0, len(records))
	for _, r := range records {
		switch {
		case r.ID == nil:
			return nil, missing("impression", "id")
		case r.BookID == nil:
			return nil, missing("impression", "bookId")
		case r.FilePath == nil:
			return nil, missing("impression", "filePath")
		case r.CreatedAt == nil:
			return nil, missing("impression", "createdAt")
		case r.UpdatedAt == nil:
			return nil, missing("impression", "updatedAt")
		}
		impressions = append(impressions, Impression{
			ID:        *r.ID,
			BookID:    *r.BookID,
			CreatedAt: *r.CreatedAt,
			UpdatedAt: *r.UpdatedAt,
			FilePath:  *r.FilePath,
		})
	}
	return impressions, nil
}

// DecodeImpressionsV1 decodes the old-layout impressions collection with
// inline content. Input to the migration engine only.
func DecodeImpressionsV1(data []byte) ([]ImpressionV1, error) {
	var records []struct {
		ID        *string    `json:"id"`
		BookID    *string    `json:"bookId"`
		Content   *string    `json:"content"`
		CreatedAt *time.Time `json:"createdAt"`
		UpdatedAt *time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	impressions := make([]ImpressionV1, 0, len(records))
	for _, r := range records {
		switch {
		case r.ID == nil:
			return nil, missing("impression", "id")
		case r.BookID == nil:
			return nil, missing("impression", "bookId")
		case r.Content == nil:
			return nil, missing("impression", "content")
		}
		imp := ImpressionV1{ID: *r.ID, BookID: *r.BookID, Content: *r.Content}
		if r.CreatedAt != nil {
			imp.CreatedAt = *r.CreatedAt
		}
		if r.UpdatedAt != nil {
			imp.UpdatedAt = *r.UpdatedAt
		}
		impressions = append(impressions, imp)
	}
	return impressions, nil
}

// DecodeStatusHistory decodes the status history collection.
func DecodeStatusHistory(data []byte) ([]StatusHistory, error) {
	var records []struct {
		ID        *string    `json:"id"`
		BookID    *string    `json:"bookId"`
		OldStatus *string    `json:"oldStatus"`
		NewStatus *string    `json:"newStatus"`
		ChangedAt *time.Time `json:"changedAt"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	history := make([]StatusHistory, 0, len(records))
	for _, r := range records {
		switch {
		case r.ID == nil:
			return nil, missing("statusHistory", "id")
		case r.BookID == nil:
			return nil, missing("statusHistory", "bookId")
		case r.OldStatus == nil:
			return nil, missing("statusHistory", "oldStatus")
		case r.NewStatus == nil:
			return nil, missing("statusHistory", "newStatus")
		case r.ChangedAt == nil:
			return nil, missing("statusHistory", "changedAt")
		}
		if !Status(*r.NewStatus).Valid() {
			return nil, &ValidationError{Entity: "statusHistory", Field: "newStatus", Reason: fmt.Sprintf("has unknown value %q", *r.NewStatus)}
		}
		history = append(history, StatusHistory{
			ID:        *r.ID,
			BookID:    *r.BookID,
			OldStatus: Status(*r.OldStatus),
			NewStatus: Status(*r.NewStatus),
			ChangedAt: *r.ChangedAt,
		})
	}
	return history, nil
}

// Encode serializes a collection snapshot as indented UTF-8 JSON. HTML escaping
// is disabled so Japanese titles and URLs stay readable in the data files.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
