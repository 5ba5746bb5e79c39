// Package site renders the catalog into a read-only static web site: an
// index page with the cover grid and one detail page per book with its
// rendered impressions.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"booklog/internal/library"
	"booklog/internal/models"
)

// Generator writes the static site for the current catalog.
type Generator struct {
	svc      *library.Service
	markdown goldmark.Markdown
	logger   *zap.Logger
}

// New creates a site generator over the catalog services.
func New(svc *library.Service, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		svc:      svc,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

type bookView struct {
	models.Book
	StatusLabel string
	StatusClass string
	PageName    string
}

type bookPage struct {
	bookView
	Impressions []template.HTML
}

type indexPage struct {
	Books []bookView
}

func statusClass(s models.Status) string {
	switch s {
	case models.StatusReading:
		return "reading"
	case models.StatusFinished:
		return "finished"
	default:
		return "to-read"
	}
}

func view(b models.Book) bookView {
	return bookView{
		Book:        b,
		StatusLabel: b.Status.Label(),
		StatusClass: statusClass(b.Status),
		PageName:    "book_" + b.ID + ".html",
	}
}

// Generate writes the whole site into outDir, creating it if needed. Books
// whose impression files went missing still get a page; the lost content is
// noted rather than rendered as empty.
func (g *Generator) Generate(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}

	books, err := g.svc.Books.List()
	if err != nil {
		return err
	}

	if err := g.writeIndex(outDir, books); err != nil {
		return err
	}
	for _, b := range books {
		if err := g.writeBookPage(outDir, b); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(outDir, "style.css"), []byte(styleCSS), 0o644); err != nil {
		return fmt.Errorf("failed to write stylesheet: %w", err)
	}

	g.logger.Info("static site generated", zap.String("dir", outDir), zap.Int("books", len(books)))
	return nil
}

func (g *Generator) writeIndex(outDir string, books []models.Book) error {
	page := indexPage{Books: make([]bookView, 0, len(books))}
	for _, b := range books {
		page.Books = append(page.Books, view(b))
	}
	return renderTo(filepath.Join(outDir, "index.html"), indexTmpl, page)
}

func (g *Generator) writeBookPage(outDir string, b models.Book) error {
	impressions, err := g.svc.Impressions.ListByBook(b.ID)
	if err != nil {
		return err
	}
	page := bookPage{bookView: view(b)}
	for _, imp := range impressions {
		content, err := g.svc.Impressions.Read(imp.ID)
		var missing *library.MissingContentError
		if errors.As(err, &missing) {
			g.logger.Warn("impression content missing, noting on page",
				zap.String("impression_id", imp.ID), zap.String("path", missing.Path))
			page.Impressions = append(page.Impressions, template.HTML("<p><em>感想ファイルが見つかりません</em></p>"))
			continue
		}
		if err != nil {
			return err
		}
		html, err := g.render(content)
		if err != nil {
			return err
		}
		page.Impressions = append(page.Impressions, html)
	}
	return renderTo(filepath.Join(outDir, page.PageName), bookTmpl, page)
}

// render converts impression markdown to HTML.
func (g *Generator) render(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := g.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func renderTo(path string, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
