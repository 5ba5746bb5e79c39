package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklog/internal/library"
	"booklog/internal/models"
	"booklog/internal/openbd"
	"booklog/internal/site"
	"booklog/internal/storage/jsonfile"
)

type fakeLookup struct {
	known map[string]openbd.BookInfo
}

func (f *fakeLookup) FetchBookInfo(_ context.Context, isbn string) (openbd.BookInfo, error) {
	info, ok := f.known[library.NormalizeISBN(isbn)]
	if !ok {
		return openbd.BookInfo{}, fmt.Errorf("%w: %s", openbd.ErrISBNNotFound, isbn)
	}
	return info, nil
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	store, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)
	lookup := &fakeLookup{known: map[string]openbd.BookInfo{
		"9784062748681": {
			Title:     "ノルウェイの森",
			Author:    "村上春樹",
			Publisher: "講談社",
			CoverURL:  "https://cover.openbd.jp/9784062748681.jpg",
		},
	}}
	svc := library.New(store, lookup, nil)
	siteDir := filepath.Join(t.TempDir(), "site")
	return New(svc, site.New(svc, nil), siteDir, nil), siteDir
}

func do(t *testing.T, s *Server, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, s *Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, s, http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

func addBookAPI(t *testing.T, s *Server, isbn string) models.Book {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/books", `{"isbn":"`+isbn+`"}`, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	return book
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRootRedirectsToBookList(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/books", rec.Header().Get("Location"))
}

func TestAPIAddAndGetBook(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "978-4-06-274868-1")
	assert.Equal(t, "9784062748681", book.ISBN, "hyphens stripped before storing")
	assert.Equal(t, "ノルウェイの森", book.Title)
	assert.Equal(t, models.StatusToRead, book.Status)

	rec := do(t, s, http.MethodGet, "/api/books/"+book.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, book.ID, got.ID)

	rec = do(t, s, http.MethodGet, "/api/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var books []models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	assert.Len(t, books, 1)
}

func TestAPIAddBookErrors(t *testing.T) {
	s, _ := newTestServer(t)
	addBookAPI(t, s, "9784062748681")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate isbn", `{"isbn":"978-4-06-274868-1"}`, http.StatusConflict},
		{"unknown isbn", `{"isbn":"9780000000000"}`, http.StatusNotFound},
		{"missing isbn", `{}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/books", tt.body, "application/json")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestAPIBookNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/books/no-such-id", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusChangeAndHistory(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/books/"+book.ID+"/status", url.Values{"status": {"READING"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/books/"+book.ID, rec.Header().Get("Location"))

	rec = do(t, s, http.MethodGet, "/api/books/"+book.ID+"/history", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.StatusHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusToRead, history[0].OldStatus)
	assert.Equal(t, models.StatusReading, history[0].NewStatus)
}

func TestStatusChangeRejectsUnknownValue(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/books/"+book.ID+"/status", url.Values{"status": {"WISHLIST"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusChangeAcceptsJapaneseLabel(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/books/"+book.ID+"/status", url.Values{"status": {"読書中"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/books/"+book.ID, "", "")
	var got models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusReading, got.Status)
}

func TestBookPages(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/books/"+book.ID+"/impressions", url.Values{"content": {"**濃密**な読書体験。"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(t, s, http.MethodGet, "/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ノルウェイの森")

	rec = do(t, s, http.MethodGet, "/books/"+book.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>濃密</strong>", "impression markdown rendered")
}

func TestAddBookFormRedirectsToDetail(t *testing.T) {
	s, _ := newTestServer(t)
	rec := postForm(t, s, "/books", url.Values{"isbn": {"9784062748681"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/books/"))
}

func TestAddBookFormRequiresISBN(t *testing.T) {
	s, _ := newTestServer(t)
	rec := postForm(t, s, "/books", url.Values{"isbn": {"  "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBook(t *testing.T) {
	s, _ := newTestServer(t)
	book := addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/books/"+book.ID+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/books", rec.Header().Get("Location"))

	rec = do(t, s, http.MethodGet, "/api/books/"+book.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateSite(t *testing.T) {
	s, siteDir := newTestServer(t)
	addBookAPI(t, s, "9784062748681")

	rec := postForm(t, s, "/generate-site", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := os.Stat(filepath.Join(siteDir, "index.html"))
	assert.NoError(t, err)
}
