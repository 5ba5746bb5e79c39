package library

import (
	"fmt"
	"sort"

	"booklog/internal/models"
	"booklog/internal/storage"
)

// StatusService validates and applies reading status transitions and keeps
// the append-only change history.
type StatusService struct {
	repo storage.Repository
}

// NewStatusService creates a status service over the given repository.
func NewStatusService(repo storage.Repository) *StatusService {
	return &StatusService{repo: repo}
}

// ChangeStatus moves a book to newStatus. Setting the status it already has
// is a no-op that returns the unchanged book. On a real transition the book
// collection is persisted before the history entry: if the process dies
// between the two writes, current state is up to date and the history is
// merely missing its latest entry.
func (s *StatusService) ChangeStatus(bookID string, newStatus models.Status) (models.Book, error) {
	if !newStatus.Valid() {
		return models.Book{}, &models.ValidationError{Entity: "book", Field: "status", Reason: fmt.Sprintf("has unknown value %q", newStatus)}
	}
	books, err := s.repo.LoadBooks()
	if err != nil {
		return models.Book{}, err
	}
	pos := -1
	for i := range books {
		if books[i].ID == bookID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return models.Book{}, ErrBookNotFound
	}
	if books[pos].Status == newStatus {
		return books[pos], nil
	}

	oldStatus := books[pos].Status
	books[pos].Status = newStatus
	books[pos].Touch()
	if err := s.repo.SaveBooks(books); err != nil {
		return models.Book{}, err
	}

	history, err := s.repo.LoadStatusHistory()
	if err != nil {
		return models.Book{}, err
	}
	history = append(history, models.NewStatusHistory(bookID, oldStatus, newStatus))
	if err := s.repo.SaveStatusHistory(history); err != nil {
		return models.Book{}, err
	}
	return books[pos], nil
}

// GetStatus returns a book's current reading status.
func (s *StatusService) GetStatus(bookID string) (models.Status, error) {
	books, err := s.repo.LoadBooks()
	if err != nil {
		return "", err
	}
	book, ok := findBook(books, bookID)
	if !ok {
		return "", ErrBookNotFound
	}
	return book.Status, nil
}

// ListHistory returns all status changes for a book ordered by change time
// ascending. A book that never changed status yields an empty slice.
func (s *StatusService) ListHistory(bookID string) ([]models.StatusHistory, error) {
	history, err := s.repo.LoadStatusHistory()
	if err != nil {
		return nil, err
	}
	entries := []models.StatusHistory{}
	for _, h := range history {
		if h.BookID == bookID {
			entries = append(entries, h)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.Before(entries[j].ChangedAt)
	})
	return entries, nil
}

// ListByStatus returns all books currently in the given status.
func (s *StatusService) ListByStatus(status models.Status) ([]models.Book, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{Entity: "book", Field: "status", Reason: fmt.Sprintf("has unknown value %q", status)}
	}
	books, err := s.repo.LoadBooks()
	if err != nil {
		return nil, err
	}
	var out []models.Book
	for _, b := range books {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}
