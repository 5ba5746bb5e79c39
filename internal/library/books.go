package library

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"booklog/internal/models"
	"booklog/internal/openbd"
	"booklog/internal/storage"
)

// Lookup fetches bibliographic data for an ISBN. Satisfied by openbd.Client.
type Lookup interface {
	FetchBookInfo(ctx context.Context, isbn string) (openbd.BookInfo, error)
}

// BookService manages the book collection, delegating persistence to the
// repository and bibliographic data to the lookup client.
type BookService struct {
	repo        storage.Repository
	lookup      Lookup
	impressions *ImpressionService
	logger      *zap.Logger
}

// NewBookService creates a book service.
func NewBookService(repo storage.Repository, lookup Lookup, impressions *ImpressionService, logger *zap.Logger) *BookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, lookup: lookup, impressions: impressions, logger: logger}
}

// NormalizeISBN strips hyphens so differently formatted ISBNs compare equal.
func NormalizeISBN(isbn string) string {
	return strings.ReplaceAll(isbn, "-", "")
}

// BookUpdate carries the fields an update may change. Nil fields are left
// untouched; id and creation timestamp are never writable.
type BookUpdate struct {
	Title           *string
	Author          *string
	Publisher       *string
	PublicationDate *string
	Description     *string
	CoverURL        *string
}

// Create registers a book by ISBN: bibliographic data comes from the lookup
// client, the record is persisted, and an initial empty impression file is
// laid down for the book.
func (s *BookService) Create(ctx context.Context, isbn string) (models.Book, error) {
	normalized := NormalizeISBN(isbn)
	books, err := s.repo.LoadBooks()
	if err != nil {
		return models.Book{}, err
	}
	for _, b := range books {
		if NormalizeISBN(b.ISBN) == normalized {
			return models.Book{}, fmt.Errorf("%w: %s", ErrDuplicateISBN, isbn)
		}
	}

	info, err := s.lookup.FetchBookInfo(ctx, isbn)
	if err != nil {
		return models.Book{}, err
	}

	var coverURL *string
	if info.CoverURL != "" {
		coverURL = &info.CoverURL
	}
	book := models.NewBook(normalized, info.Title, info.Author, info.Publisher, info.PublicationDate, info.Description, coverURL)

	books = append(books, book)
	if err := s.repo.SaveBooks(books); err != nil {
		return models.Book{}, err
	}
	s.logger.Info("book created", zap.String("book_id", book.ID), zap.String("isbn", normalized), zap.String("title", book.Title))

	if _, err := s.impressions.Create(book.ID, ""); err != nil {
		return models.Book{}, fmt.Errorf("book saved but initial impression failed: %w", err)
	}
	return book, nil
}

// Get returns one book by id.
func (s *BookService) Get(bookID string) (models.Book, error) {
	books, err := s.repo.LoadBooks()
	if err != nil {
		return models.Book{}, err
	}
	book, ok := findBook(books, bookID)
	if !ok {
		return models.Book{}, ErrBookNotFound
	}
	return book, nil
}

// List returns all books in collection order.
func (s *BookService) List() ([]models.Book, error) {
	return s.repo.LoadBooks()
}

// Update applies the non-nil fields of upd to a book and refreshes its
// last-updated timestamp.
func (s *BookService) Update(bookID string, upd BookUpdate) (models.Book, error) {
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

	b := &books[pos]
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.Publisher != nil {
		b.Publisher = *upd.Publisher
	}
	if upd.PublicationDate != nil {
		b.PublicationDate = *upd.PublicationDate
	}
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.CoverURL != nil {
		b.CoverURL = upd.CoverURL
	}
	b.Touch()

	if err := s.repo.SaveBooks(books); err != nil {
		return models.Book{}, err
	}
	return *b, nil
}

// Delete removes a book and cascades: every impression of the book goes,
// records and content files both, along with its status history entries. The
// book collection is persisted first so the authoritative state is never left
// pointing at a book that no longer exists.
func (s *BookService) Delete(bookID string) error {
	books, err := s.repo.LoadBooks()
	if err != nil {
		return err
	}
	kept := books[:0:0]
	found := false
	for _, b := range books {
		if b.ID == bookID {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return ErrBookNotFound
	}
	if err := s.repo.SaveBooks(kept); err != nil {
		return err
	}

	removed, err := s.impressions.DeleteByBook(bookID)
	if err != nil {
		return err
	}

	history, err := s.repo.LoadStatusHistory()
	if err != nil {
		return err
	}
	keptHistory := history[:0:0]
	for _, h := range history {
		if h.BookID != bookID {
			keptHistory = append(keptHistory, h)
		}
	}
	if len(keptHistory) != len(history) {
		if err := s.repo.SaveStatusHistory(keptHistory); err != nil {
			return err
		}
	}

	s.logger.Info("book deleted", zap.String("book_id", bookID), zap.Int("impressions_removed", removed))
	return nil
}

// FetchMissingCovers fills in cover URLs for books that lack one, skipping
// books whose lookup fails so a single bad ISBN cannot block the rest.
func (s *BookService) FetchMissingCovers(ctx context.Context) (int, error) {
	books, err := s.repo.LoadBooks()
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range books {
		if books[i].CoverURL != nil || books[i].ISBN == "" {
			continue
		}
		info, err := s.lookup.FetchBookInfo(ctx, books[i].ISBN)
		if err != nil {
			s.logger.Warn("cover lookup failed, skipping", zap.String("isbn", books[i].ISBN), zap.Error(err))
			continue
		}
		if info.CoverURL == "" {
			continue
		}
		cover := info.CoverURL
		books[i].CoverURL = &cover
		books[i].Touch()
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	if err := s.repo.SaveBooks(books); err != nil {
		return 0, err
	}
	return updated, nil
}
