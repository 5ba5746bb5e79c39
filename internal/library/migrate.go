package library

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"booklog/internal/models"
	"booklog/internal/storage"
)

// MigrationStore is the widened repository the migration engine needs: the
// normal collection saves plus lenient reads of the old layout. Satisfied by
// jsonfile.Store.
type MigrationStore interface {
	storage.Repository

	// LoadBooksLenient reads books tolerating absent status and cover fields.
	LoadBooksLenient() ([]models.Book, error)
	// LoadImpressionsV1 reads the old inline-content impressions file.
	LoadImpressionsV1() ([]models.ImpressionV1, error)
	// StatusHistoryExists reports whether the history collection was initialized.
	StatusHistoryExists() bool
	// Dir is the data directory root that impression file paths resolve against.
	Dir() string
}

// Migrator performs the one-time forward migration from the v1 record layout
// to the v2 layout with status tracking and externalized impression files.
type Migrator struct {
	store  MigrationStore
	logger *zap.Logger
}

// NewMigrator creates a migration engine over the given store.
func NewMigrator(store MigrationStore, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{store: store, logger: logger}
}

// MigrateFromV1 upgrades an old-layout dataset in place. A dataset already in
// the new layout is a no-op that reports success without touching any file.
// The old inline-content impressions.json is never modified and stays behind
// as an implicit backup; any failure comes back as a MigrationError with the
// v1 data fully intact for retry.
//
// The returned flag is true when a migration actually ran.
func (m *Migrator) MigrateFromV1() (bool, error) {
	books, err := m.store.LoadBooksLenient()
	if err != nil {
		return false, &MigrationError{Err: err}
	}

	oldLayout := !m.store.StatusHistoryExists()
	for _, b := range books {
		if b.Status == "" {
			oldLayout = true
			break
		}
	}
	if !oldLayout {
		return false, nil
	}

	v1Impressions, err := m.store.LoadImpressionsV1()
	if err != nil {
		return false, &MigrationError{Err: err}
	}

	// Upgrade book records: default status, explicit null cover where absent.
	for i := range books {
		if books[i].Status == "" {
			books[i].Status = models.StatusToRead
		}
	}

	// Externalize inline impressions. The v1 record identity and timestamps
	// carry over so a retried migration rewrites the same files instead of
	// piling up new ones. Content files land on disk before any collection is
	// saved, so the index can never reference a file that was not written.
	index, err := m.store.LoadImpressions()
	if err != nil {
		return false, &MigrationError{Err: err}
	}
	indexed := make(map[string]bool, len(index))
	for _, imp := range index {
		indexed[imp.ID] = true
	}
	added := 0
	for _, v1 := range v1Impressions {
		if v1.BookID == "" || v1.Content == "" {
			continue
		}
		title := ""
		if book, ok := findBook(books, v1.BookID); ok {
			title = book.Title
		}
		imp := models.Impression{
			ID:        v1.ID,
			BookID:    v1.BookID,
			CreatedAt: v1.CreatedAt,
			UpdatedAt: v1.UpdatedAt,
			FilePath:  impressionFilePath(title, v1.ID),
		}
		path := filepath.Join(m.store.Dir(), filepath.FromSlash(imp.FilePath))
		if err := writeContentFile(path, title, v1.Content); err != nil {
			return false, &MigrationError{Err: fmt.Errorf("externalizing impression %s: %w", v1.ID, err)}
		}
		if !indexed[imp.ID] {
			index = append(index, imp)
			added++
		}
	}

	if err := m.store.SaveImpressions(index); err != nil {
		return false, &MigrationError{Err: err}
	}
	if err := m.store.SaveBooks(books); err != nil {
		return false, &MigrationError{Err: err}
	}
	if !m.store.StatusHistoryExists() {
		if err := m.store.SaveStatusHistory([]models.StatusHistory{}); err != nil {
			return false, &MigrationError{Err: err}
		}
	}

	m.logger.Info("migrated dataset from v1 to v2",
		zap.Int("books", len(books)),
		zap.Int("impressions_externalized", added))
	return true, nil
}
