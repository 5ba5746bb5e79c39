package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"booklog/internal/models"
	"booklog/internal/openbd"
	"booklog/internal/storage/jsonfile"
)

// fakeLookup satisfies Lookup with canned data, keyed by normalized ISBN.
type fakeLookup struct {
	info map[string]openbd.BookInfo
	err  error
}

func (f *fakeLookup) FetchBookInfo(_ context.Context, isbn string) (openbd.BookInfo, error) {
	if f.err != nil {
		return openbd.BookInfo{}, f.err
	}
	info, ok := f.info[NormalizeISBN(isbn)]
	if !ok {
		return openbd.BookInfo{}, openbd.ErrISBNNotFound
	}
	return info, nil
}

func newTestService(t *testing.T, lookup Lookup) (*Service, *jsonfile.Store) {
	t.Helper()
	store, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)
	if lookup == nil {
		lookup = &fakeLookup{}
	}
	return New(store, lookup, nil), store
}

// addBook persists a book directly through the store, bypassing the lookup.
func addBook(t *testing.T, store *jsonfile.Store, title string) models.Book {
	t.Helper()
	books, err := store.LoadBooks()
	require.NoError(t, err)
	book := models.NewBook("isbn-"+title, title, "著者", "出版社", "2020-01-01", "", nil)
	require.NoError(t, store.SaveBooks(append(books, book)))
	return book
}
