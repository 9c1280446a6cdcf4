// Package render turns chapter markdown into HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/zzats/elixirtut/internal/book"
)

// Renderer converts markdown documents to HTML
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub flavoured markdown. Raw HTML in
// the source is dropped.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts one document
func (r *Renderer) Render(doc book.Document) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(doc.Markdown), &buf); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", doc.File, err)
	}
	return template.HTML(buf.String()), nil
}
