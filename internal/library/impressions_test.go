package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklog/internal/models"
	"booklog/internal/storage/stubs"
)

func TestCreateImpression(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "ノルウェイの森")

	imp, err := svc.Impressions.Create(book.ID, "静かな小説だった。")
	require.NoError(t, err)
	assert.Equal(t, book.ID, imp.BookID)
	assert.True(t, strings.HasPrefix(imp.FilePath, "impressions/"), "path is index-relative")
	assert.True(t, strings.HasSuffix(imp.FilePath, imp.ID+".md"))

	// The content file carries a heading line identifying the book.
	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.FromSlash(imp.FilePath)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# ノルウェイの森\n\n"))
	assert.Contains(t, string(data), "静かな小説だった。")

	// And the record survives a reload.
	listed, err := svc.Impressions.ListByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, imp.ID, listed[0].ID)
}

func TestCreateImpressionUnknownBook(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Impressions.Create("no-such-book", "content")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestReadImpression(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "雪国")
	imp, err := svc.Impressions.Create(book.ID, "国境の長いトンネル。")
	require.NoError(t, err)

	content, err := svc.Impressions.Read(imp.ID)
	require.NoError(t, err)
	assert.Contains(t, content, "国境の長いトンネル。")
}

func TestReadImpressionMissingFile(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "砂の女")
	imp, err := svc.Impressions.Create(book.ID, "content")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), filepath.FromSlash(imp.FilePath))))

	_, err = svc.Impressions.Read(imp.ID)
	var missing *MissingContentError
	require.ErrorAs(t, err, &missing, "a lost file is reported, never read back as empty")
	assert.Equal(t, imp.ID, missing.ImpressionID)
}

func TestUpdateImpression(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "海辺のカフカ")
	imp, err := svc.Impressions.Create(book.ID, "first thoughts")
	require.NoError(t, err)

	updated, err := svc.Impressions.Update(imp.ID, "second thoughts")
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(imp.UpdatedAt))

	content, err := svc.Impressions.Read(imp.ID)
	require.NoError(t, err)
	assert.Contains(t, content, "second thoughts")
	assert.NotContains(t, content, "first thoughts", "update replaces the full content")
}

func TestUpdateImpressionValidation(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "人間失格")
	imp, err := svc.Impressions.Create(book.ID, "content")
	require.NoError(t, err)

	_, err = svc.Impressions.Update(imp.ID, "   \n")
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = svc.Impressions.Update("missing", "content")
	assert.ErrorIs(t, err, ErrImpressionNotFound)
}

func TestDeleteImpression(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "金閣寺")
	imp, err := svc.Impressions.Create(book.ID, "content")
	require.NoError(t, err)
	path := filepath.Join(store.Dir(), filepath.FromSlash(imp.FilePath))

	require.NoError(t, svc.Impressions.Delete(imp.ID))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "backing file is removed")
	_, err = svc.Impressions.Get(imp.ID)
	assert.ErrorIs(t, err, ErrImpressionNotFound)
}

func TestDeleteImpressionToleratesMissingFile(t *testing.T) {
	svc, store := newTestService(t, nil)
	book := addBook(t, store, "羅生門")
	imp, err := svc.Impressions.Create(book.ID, "content")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), filepath.FromSlash(imp.FilePath))))

	// File absence does not block deleting the metadata record.
	require.NoError(t, svc.Impressions.Delete(imp.ID))
	_, err = svc.Impressions.Get(imp.ID)
	assert.ErrorIs(t, err, ErrImpressionNotFound)
}

func TestCreateImpressionCleansUpOnSaveFailure(t *testing.T) {
	repo := stubs.NewMockRepository()
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "impressions"), 0o755))
	svc := NewImpressionService(repo, dataDir)

	book := models.NewBook("9784062748681", "ノルウェイの森", "", "", "", "", nil)
	require.NoError(t, repo.SaveBooks([]models.Book{book}))

	repo.FailSaves = assert.AnError
	_, err := svc.Create(book.ID, "content")
	require.ErrorIs(t, err, assert.AnError)

	// The content file written before the failed index save is rolled back.
	entries, err := os.ReadDir(filepath.Join(dataDir, "impressions"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no orphan file after a failed index save")
}

func TestSanitizeTitle(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain title", input: "ノルウェイの森", expected: "ノルウェイの森"},
		{name: "path separators", input: "a/b\\c", expected: "a_b_c"},
		{name: "shell hostile punctuation", input: `<>:"|?*`, expected: "_______"},
		{name: "control characters replaced", input: "a\x00b\x1fc", expected: "a_b_c"},
		{name: "empty becomes untitled", input: "", expected: "untitled"},
		{name: "whitespace becomes untitled", input: "   ", expected: "untitled"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeTitle(tc.input))
		})
	}
}

func TestSanitizeTitleCapsLength(t *testing.T) {
	long := strings.Repeat("あ", 80)
	safe := sanitizeTitle(long)
	assert.LessOrEqual(t, len([]rune(safe)), 50)
}
