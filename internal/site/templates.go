package site

import "html/template"

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>蔵書一覧</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<h1>蔵書一覧</h1>
<div class="grid">
{{range .Books}}  <a class="card" href="{{.PageName}}">
    {{if .CoverURL}}<img src="{{.CoverURL}}" alt="{{.Title}}">{{else}}<div class="no-cover">No Cover</div>{{end}}
    <div class="card-body">
      <span class="status {{.StatusClass}}">{{.StatusLabel}}</span>
      <h2>{{.Title}}</h2>
      <p>{{.Author}}</p>
    </div>
  </a>
{{else}}  <p>まだ本が登録されていません。</p>
{{end}}</div>
</body>
</html>
`))

var bookTmpl = template.Must(template.New("book").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<p><a href="index.html">&larr; 一覧へ戻る</a></p>
<article>
  <header>
    {{if .CoverURL}}<img class="cover" src="{{.CoverURL}}" alt="{{.Title}}">{{end}}
    <h1>{{.Title}}</h1>
    <span class="status {{.StatusClass}}">{{.StatusLabel}}</span>
    <dl>
      <dt>著者</dt><dd>{{.Author}}</dd>
      <dt>出版社</dt><dd>{{.Publisher}}</dd>
      <dt>出版日</dt><dd>{{.PublicationDate}}</dd>
      <dt>ISBN</dt><dd>{{.ISBN}}</dd>
    </dl>
    {{if .Description}}<p class="description">{{.Description}}</p>{{end}}
  </header>
  <section class="impressions">
    <h2>感想</h2>
{{range .Impressions}}    <div class="impression">{{.}}</div>
{{else}}    <p>感想はまだありません。</p>
{{end}}  </section>
</article>
</body>
</html>
`))

const styleCSS = `body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", "Hiragino Sans", Meiryo, sans-serif;
  line-height: 1.6;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
}
.grid {
  display: grid;
  grid-template-columns: repeat(auto-fill, minmax(180px, 1fr));
  gap: 16px;
}
.card {
  border: 1px solid #ddd;
  border-radius: 6px;
  overflow: hidden;
  text-decoration: none;
  color: inherit;
}
.card img, .no-cover {
  width: 100%;
  height: 240px;
  object-fit: cover;
  background: #f0f0f0;
  display: block;
}
.no-cover {
  display: flex;
  align-items: center;
  justify-content: center;
  color: #999;
}
.card-body { padding: 8px 12px; }
.card-body h2 { font-size: 1rem; margin: 4px 0; }
.card-body p { font-size: 0.85rem; color: #666; margin: 0; }
.status {
  display: inline-block;
  padding: 2px 8px;
  border-radius: 10px;
  font-size: 0.75rem;
  color: #fff;
}
.status.to-read { background: #9e9e9e; }
.status.reading { background: #1976d2; }
.status.finished { background: #388e3c; }
.cover { max-width: 200px; float: right; margin-left: 16px; }
dl dt { font-weight: bold; }
dl dd { margin: 0 0 8px 0; }
.impression {
  border-top: 1px solid #eee;
  padding: 12px 0;
}
.impression blockquote {
  border-left: 4px solid #ddd;
  margin: 0;
  padding-left: 16px;
  color: #666;
}
.impression code {
  background-color: #f6f8fa;
  padding: 2px 6px;
  border-radius: 3px;
}
.impression pre {
  background-color: #f6f8fa;
  padding: 16px;
  border-radius: 6px;
  overflow-x: auto;
}
`
