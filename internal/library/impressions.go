package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"booklog/internal/models"
	"booklog/internal/storage"
)

const (
	impressionsSubdir = "impressions"
	maxTitleRunes     = 50
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"|?*\\/]|[\x00-\x1f\x7f-\x9f]`)

// ImpressionService manages long-form impressions. The metadata record lives
// in the impressions index while the text itself lives in one markdown file
// per impression under <dataDir>/impressions.
type ImpressionService struct {
	repo    storage.Repository
	dataDir string
}

// NewImpressionService creates an impression service writing content files
// under dataDir.
func NewImpressionService(repo storage.Repository, dataDir string) *ImpressionService {
	return &ImpressionService{repo: repo, dataDir: dataDir}
}

// sanitizeTitle makes a book title safe for use in a file name: path
// separators, shell-hostile punctuation and control characters become
// underscores and the result is capped at 50 runes.
func sanitizeTitle(title string) string {
	safe := invalidFilenameChars.ReplaceAllString(title, "_")
	if runes := []rune(safe); len(runes) > maxTitleRunes {
		safe = strings.TrimRight(string(runes[:maxTitleRunes]), "_")
	}
	if strings.TrimSpace(safe) == "" {
		safe = "untitled"
	}
	return safe
}

// impressionFilePath derives the index-relative path of an impression's
// content file from the sanitized book title and the impression id.
func impressionFilePath(title, impressionID string) string {
	return impressionsSubdir + "/" + fmt.Sprintf("%s_%s.md", sanitizeTitle(title), impressionID)
}

// resolve turns the slash-separated index-relative path into a filesystem path.
func (s *ImpressionService) resolve(relPath string) string {
	return filepath.Join(s.dataDir, filepath.FromSlash(relPath))
}

// writeContentFile writes the full content file: a heading line identifying
// the book, then the free-form text.
func writeContentFile(path, bookTitle, content string) error {
	text := "# " + bookTitle + "\n\n" + content
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write impression file: %w", err)
	}
	return nil
}

// Create writes a new impression for a book. The content file is written
// before the metadata record is persisted: if the file write fails, no record
// is saved.
func (s *ImpressionService) Create(bookID, content string) (models.Impression, error) {
	books, err := s.repo.LoadBooks()
	if err != nil {
		return models.Impression{}, err
	}
	book, ok := findBook(books, bookID)
	if !ok {
		return models.Impression{}, ErrBookNotFound
	}

	imp := models.NewImpression(bookID, "")
	imp.FilePath = impressionFilePath(book.Title, imp.ID)

	if err := writeContentFile(s.resolve(imp.FilePath), book.Title, content); err != nil {
		return models.Impression{}, err
	}

	index, err := s.repo.LoadImpressions()
	if err != nil {
		os.Remove(s.resolve(imp.FilePath))
		return models.Impression{}, err
	}
	index = append(index, imp)
	if err := s.repo.SaveImpressions(index); err != nil {
		os.Remove(s.resolve(imp.FilePath))
		return models.Impression{}, err
	}
	return imp, nil
}

// Get returns the metadata record for one impression.
func (s *ImpressionService) Get(impressionID string) (models.Impression, error) {
	index, err := s.repo.LoadImpressions()
	if err != nil {
		return models.Impression{}, err
	}
	for _, imp := range index {
		if imp.ID == impressionID {
			return imp, nil
		}
	}
	return models.Impression{}, ErrImpressionNotFound
}

// ListByBook returns the metadata records for all impressions of one book,
// in index order.
func (s *ImpressionService) ListByBook(bookID string) ([]models.Impression, error) {
	index, err := s.repo.LoadImpressions()
	if err != nil {
		return nil, err
	}
	var out []models.Impression
	for _, imp := range index {
		if imp.BookID == bookID {
			out = append(out, imp)
		}
	}
	return out, nil
}

// Read returns the full text of an impression's content file.
func (s *ImpressionService) Read(impressionID string) (string, error) {
	imp, err := s.Get(impressionID)
	if err != nil {
		return "", err
	}
	path := s.resolve(imp.FilePath)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &MissingContentError{ImpressionID: impressionID, Path: path}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read impression file: %w", err)
	}
	return string(data), nil
}

// Update overwrites the impression's content file with new content and
// refreshes the metadata record's last-updated timestamp. Partial edits are
// not supported.
func (s *ImpressionService) Update(impressionID, content string) (models.Impression, error) {
	if strings.TrimSpace(content) == "" {
		return models.Impression{}, &models.ValidationError{Entity: "impression", Field: "content", Reason: "must not be empty"}
	}
	index, err := s.repo.LoadImpressions()
	if err != nil {
		return models.Impression{}, err
	}
	pos := -1
	for i := range index {
		if index[i].ID == impressionID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return models.Impression{}, ErrImpressionNotFound
	}

	books, err := s.repo.LoadBooks()
	if err != nil {
		return models.Impression{}, err
	}
	title := ""
	if book, ok := findBook(books, index[pos].BookID); ok {
		title = book.Title
	}
	if err := writeContentFile(s.resolve(index[pos].FilePath), title, content); err != nil {
		return models.Impression{}, err
	}
	index[pos].Touch()
	if err := s.repo.SaveImpressions(index); err != nil {
		return models.Impression{}, err
	}
	return index[pos], nil
}

// Delete removes the metadata record and the backing file. An already absent
// file does not fail the deletion.
func (s *ImpressionService) Delete(impressionID string) error {
	index, err := s.repo.LoadImpressions()
	if err != nil {
		return err
	}
	kept := index[:0:0]
	var removed *models.Impression
	for _, imp := range index {
		if imp.ID == impressionID {
			removed = &imp
			continue
		}
		kept = append(kept, imp)
	}
	if removed == nil {
		return ErrImpressionNotFound
	}
	if err := s.repo.SaveImpressions(kept); err != nil {
		return err
	}
	if err := os.Remove(s.resolve(removed.FilePath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove impression file: %w", err)
	}
	return nil
}

// DeleteByBook removes every impression of one book, records and files both.
// It backs the cascade when a book is deleted and returns the number of
// impressions removed.
func (s *ImpressionService) DeleteByBook(bookID string) (int, error) {
	index, err := s.repo.LoadImpressions()
	if err != nil {
		return 0, err
	}
	kept := index[:0:0]
	var doomed []models.Impression
	for _, imp := range index {
		if imp.BookID == bookID {
			doomed = append(doomed, imp)
			continue
		}
		kept = append(kept, imp)
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := s.repo.SaveImpressions(kept); err != nil {
		return 0, err
	}
	for _, imp := range doomed {
		if err := os.Remove(s.resolve(imp.FilePath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("failed to remove impression file: %w", err)
		}
	}
	return len(doomed), nil
}

func findBook(books []models.Book, bookID string) (models.Book, bool) {
	for _, b := range books {
		if b.ID == bookID {
			return b, true
		}
	}
	return models.Book{}, false
}
