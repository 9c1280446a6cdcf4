package site

import "html/template"

var templates = template.Must(template.New("site").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
</head>
<body>
{{end}}

{{define "chapter"}}{{template "head" printf "%d. %s - %s" .Chapter.Number .Chapter.Title .Book}}
<nav class="top"><a href="/">{{.Book}}</a></nav>
<article>
<header>
<p class="chapter-number">Chapter {{.Chapter.Number}}</p>
<p class="completion">{{.Chapter.Completion}} done</p>
</header>
{{.Content}}
</article>
<nav class="pager">
{{- range .Previous}}
<a rel="prev" href="{{.Path}}">&larr; {{.Number}}. {{.Title}}</a>
{{- end}}
{{- range .Next}}
<a rel="next" href="{{.Path}}">{{.Number}}. {{.Title}} &rarr;</a>
{{- end}}
</nav>
</body>
</html>
{{end}}

{{define "toc"}}{{template "head" .Book}}
<h1>{{.Book}}</h1>
{{- if .Chapters}}
<ol class="toc">
{{- range .Chapters}}
<li value="{{.Number}}"><a href="{{.Path}}">{{.Title}}</a> <span class="completion">{{.Completion}}</span></li>
{{- end}}
</ol>
{{- else}}
<p>No chapters yet.</p>
{{- end}}
</body>
</html>
{{end}}
`))

type chapterView struct {
	Book     string
	Chapter  chapterLink
	Content  template.HTML
	Previous []chapterLink
	Next     []chapterLink
}

type tocView struct {
	Book     string
	Chapters []chapterLink
}
