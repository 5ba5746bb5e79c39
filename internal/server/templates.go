package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"booklog/internal/models"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts impression markdown to safe-to-embed HTML. If the
// conversion fails the raw text is shown preformatted instead.
func (s *Server) renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		escaped := template.HTMLEscapeString(content)
		return template.HTML("<pre>" + escaped + "</pre>")
	}
	return template.HTML(buf.String())
}

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type bookRow struct {
	models.Book
	StatusLabel string
}

type listPage struct {
	Books    []bookRow
	Statuses []models.Status
}

type impressionView struct {
	ID      string
	HTML    template.HTML
	Missing bool
}

type historyRow struct {
	OldLabel  string
	NewLabel  string
	ChangedAt string
}

type detailPage struct {
	bookRow
	Statuses    []models.Status
	Impressions []impressionView
	History     []historyRow
}

func allStatuses() []models.Status {
	return []models.Status{models.StatusToRead, models.StatusReading, models.StatusFinished}
}

func listPageData(books []models.Book) listPage {
	page := listPage{Statuses: allStatuses()}
	for _, b := range books {
		page.Books = append(page.Books, bookRow{Book: b, StatusLabel: b.Status.Label()})
	}
	return page
}

func detailPageData(book models.Book, history []models.StatusHistory) *detailPage {
	page := &detailPage{
		bookRow:  bookRow{Book: book, StatusLabel: book.Status.Label()},
		Statuses: allStatuses(),
	}
	for _, h := range history {
		page.History = append(page.History, historyRow{
			OldLabel:  h.OldStatus.Label(),
			NewLabel:  h.NewStatus.Label(),
			ChangedAt: h.ChangedAt.Format("2006-01-02 15:04"),
		})
	}
	return page
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

var listTmpl = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="UTF-8"><title>蔵書管理</title></head>
<body>
<h1>蔵書管理</h1>
<form method="post" action="/books">
  <input type="text" name="isbn" placeholder="ISBN" required>
  <button type="submit">ISBNで追加</button>
</form>
<form method="post" action="/generate-site">
  <button type="submit">静的サイトを生成</button>
</form>
<table border="1" cellpadding="6">
  <tr><th>タイトル</th><th>著者</th><th>ステータス</th></tr>
{{range .Books}}  <tr>
    <td><a href="/books/{{.ID}}">{{.Title}}</a></td>
    <td>{{.Author}}</td>
    <td>{{.StatusLabel}}</td>
  </tr>
{{else}}  <tr><td colspan="3">まだ本が登録されていません。</td></tr>
{{end}}</table>
</body>
</html>
`))

var detailTmpl = template.Must(template.New("detail").Parse(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body>
<p><a href="/books">&larr; 一覧へ戻る</a></p>
{{if .CoverURL}}<img src="{{.CoverURL}}" alt="{{.Title}}" style="max-width:200px;float:right">{{end}}
<h1>{{.Title}}</h1>
<p>{{.Author}} / {{.Publisher}} / {{.PublicationDate}} / ISBN {{.ISBN}}</p>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<form method="post" action="/books/{{.ID}}/status">
  <label>ステータス: {{.StatusLabel}}</label>
  <select name="status">
{{range .Statuses}}    <option value="{{.}}">{{.Label}}</option>
{{end}}  </select>
  <button type="submit">変更</button>
</form>
<form method="post" action="/books/{{.ID}}/delete" onsubmit="return confirm('削除しますか?')">
  <button type="submit">削除</button>
</form>
<h2>感想</h2>
{{range .Impressions}}{{if .Missing}}<p><em>感想ファイルが見つかりません</em></p>{{else}}<div>{{.HTML}}</div>{{end}}
{{else}}<p>感想はまだありません。</p>
{{end}}
<form method="post" action="/books/{{.ID}}/impressions">
  <textarea name="content" rows="6" cols="60" placeholder="Markdownで感想を書く"></textarea><br>
  <button type="submit">感想を追加</button>
</form>
<h2>ステータス履歴</h2>
{{if .History}}<ul>
{{range .History}}  <li>{{.ChangedAt}}: {{.OldLabel}} &rarr; {{.NewLabel}}</li>
{{end}}</ul>{{else}}<p>履歴はありません。</p>{{end}}
</body>
</html>
`))
