// Package server exposes the web front end: HTML pages for browsing the
// catalog and a small JSON API. It holds one service instance constructed at
// startup and passed in, never process-global state. Requests are handled
// synchronously; the persistence layer below does not arbitrate concurrent
// writers, so this single process is the serialization point.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"booklog/internal/library"
	"booklog/internal/models"
	"booklog/internal/openbd"
	"booklog/internal/site"
	"booklog/internal/storage"
)

// Server handles HTTP requests for the catalog.
type Server struct {
	svc     *library.Service
	gen     *site.Generator
	siteDir string
	mux     *http.ServeMux
	logger  *zap.Logger
}

// New constructs the server with routes configured.
func New(svc *library.Service, gen *site.Generator, siteDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:     svc,
		gen:     gen,
		siteDir: siteDir,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped with request logging.
func (s *Server) Router() http.Handler {
	return s.withRequestLog(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// HTML pages
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/books", http.StatusFound)
	})
	s.mux.HandleFunc("GET /books", s.handleBookList)
	s.mux.HandleFunc("GET /books/{id}", s.handleBookDetail)
	s.mux.HandleFunc("POST /books", s.handleAddBook)
	s.mux.HandleFunc("POST /books/{id}/status", s.handleChangeStatus)
	s.mux.HandleFunc("POST /books/{id}/delete", s.handleDeleteBook)
	s.mux.HandleFunc("POST /books/{id}/impressions", s.handleAddImpression)
	s.mux.HandleFunc("POST /generate-site", s.handleGenerateSite)

	// JSON API
	s.mux.HandleFunc("GET /api/books", s.handleAPIBooks)
	s.mux.HandleFunc("GET /api/books/{id}", s.handleAPIBook)
	s.mux.HandleFunc("GET /api/books/{id}/history", s.handleAPIHistory)
	s.mux.HandleFunc("POST /api/books", s.handleAPIAddBook)
}

// withRequestLog logs one structured line per request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// httpStatus maps the service error taxonomy onto HTTP statuses. Raw
// filesystem errors never reach clients; anything unrecognized is a 500.
func httpStatus(err error) int {
	var validation *models.ValidationError
	var missing *library.MissingContentError
	var corrupt *storage.CorruptDataError
	switch {
	case errors.Is(err, library.ErrBookNotFound),
		errors.Is(err, library.ErrImpressionNotFound),
		errors.Is(err, openbd.ErrISBNNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrDuplicateISBN):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &missing), errors.As(err, &corrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) failJSON(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
