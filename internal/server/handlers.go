package server

import (
	"errors"
	"net/http"
	"strings"

	"booklog/internal/library"
	"booklog/internal/models"
)

func (s *Server) handleBookList(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.Books.List()
	if err != nil {
		s.fail(w, err)
		return
	}
	renderPage(w, listTmpl, listPageData(books))
}

func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	book, err := s.svc.Books.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	impressions, err := s.svc.Impressions.ListByBook(book.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	history, err := s.svc.Status.ListHistory(book.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	data := detailPageData(book, history)
	for _, imp := range impressions {
		content, err := s.svc.Impressions.Read(imp.ID)
		var missing *library.MissingContentError
		if errors.As(err, &missing) {
			data.Impressions = append(data.Impressions, impressionView{ID: imp.ID, Missing: true})
			continue
		}
		if err != nil {
			s.fail(w, err)
			return
		}
		data.Impressions = append(data.Impressions, impressionView{ID: imp.ID, HTML: s.renderMarkdown(content)})
	}
	renderPage(w, detailTmpl, data)
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimSpace(r.FormValue("isbn"))
	if isbn == "" {
		http.Error(w, "isbn required", http.StatusBadRequest)
		return
	}
	book, err := s.svc.Books.Create(r.Context(), isbn)
	if err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/books/"+book.ID, http.StatusSeeOther)
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := models.ParseStatus(strings.TrimSpace(r.FormValue("status")))
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	book, err := s.svc.Status.ChangeStatus(r.PathValue("id"), status)
	if err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/books/"+book.ID, http.StatusSeeOther)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Books.Delete(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

func (s *Server) handleAddImpression(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	content := r.FormValue("content")
	if _, err := s.svc.Impressions.Create(bookID, content); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/books/"+bookID, http.StatusSeeOther)
}

func (s *Server) handleGenerateSite(w http.ResponseWriter, r *http.Request) {
	if err := s.gen.Generate(s.siteDir); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

func (s *Server) handleAPIBooks(w http.ResponseWriter, _ *http.Request) {
	books, err := s.svc.Books.List()
	if err != nil {
		s.failJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleAPIBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.svc.Books.Get(r.PathValue("id"))
	if err != nil {
		s.failJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.Status.ListHistory(r.PathValue("id"))
	if err != nil {
		s.failJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAPIAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ISBN string `json:"isbn"`
	}
	if err := decodeJSONBody(r, &req); err != nil || strings.TrimSpace(req.ISBN) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "isbn required"})
		return
	}
	book, err := s.svc.Books.Create(r.Context(), req.ISBN)
	if err != nil {
		s.failJSON(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}
