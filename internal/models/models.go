package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the reading status of a book.
type Status string

const (
	StatusToRead   Status = "TO-READ"
	StatusReading  Status = "READING"
	StatusFinished Status = "FINISHED"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusFinished:
		return true
	}
	return false
}

// Label returns the Japanese display label for the status.
// Collection files always store the canonical token; labels are for front ends only.
func (s Status) Label() string {
	switch s {
	case StatusToRead:
		return "積読"
	case StatusReading:
		return "読書中"
	case StatusFinished:
		return "読了"
	}
	return string(s)
}

// ParseStatus resolves a canonical status token or a Japanese display label.
// The second return value is false if the input matches neither.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case string(StatusToRead), "積読":
		return StatusToRead, true
	case string(StatusReading), "読書中":
		return StatusReading, true
	case string(StatusFinished), "読了":
		return StatusFinished, true
	}
	return "", false
}

// Book represents a book in the catalog.
type Book struct {
	ID              string    `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	PublicationDate string    `json:"publicationDate"`
	Description     string    `json:"description"`
	CoverURL        *string   `json:"coverUrl"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Impression is the metadata record for one long-form impression.
// The text itself lives in the markdown file at FilePath.
type Impression struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	FilePath  string    `json:"filePath"`
}

// ImpressionV1 is the old-layout impression record with inline content.
// It only appears as input to the v1 to v2 migration.
type ImpressionV1 struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusHistory records one accepted status transition for a book.
// Entries are append-only and never rewritten.
type StatusHistory struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	OldStatus Status    `json:"oldStatus"`
	NewStatus Status    `json:"newStatus"`
	ChangedAt time.Time `json:"changedAt"`
}

// now returns the current UTC time at second precision, the resolution
// the collection files store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// NewBook builds a Book with a generated id and timestamps.
// New books always start as TO-READ.
func NewBook(isbn, title, author, publisher, publicationDate, description string, coverURL *string) Book {
	ts := now()
	return Book{
		ID:              uuid.NewString(),
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Publisher:       publisher,
		PublicationDate: publicationDate,
		Description:     description,
		CoverURL:        coverURL,
		Status:          StatusToRead,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}

// NewImpression builds an impression metadata record with a generated id
// and timestamps. The file path is filled in by the impression service.
func NewImpression(bookID, filePath string) Impression {
	ts := now()
	return Impression{
		ID:        uuid.NewString(),
		BookID:    bookID,
		CreatedAt: ts,
		UpdatedAt: ts,
		FilePath:  filePath,
	}
}

// NewStatusHistory builds a history entry for a transition that was accepted.
func NewStatusHistory(bookID string, oldStatus, newStatus Status) StatusHistory {
	return StatusHistory{
		ID:        uuid.NewString(),
		BookID:    bookID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedAt: now(),
	}
}

// Touch refreshes the book's last-updated timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = now()
}

// Touch refreshes the impression's last-updated timestamp.
func (i *Impression) Touch() {
	i.UpdatedAt = now()
}
