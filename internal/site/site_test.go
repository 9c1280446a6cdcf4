package site

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/zzats/elixirtut/internal/book"
	"github.com/zzats/elixirtut/internal/metrics"
	"github.com/zzats/elixirtut/internal/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testRegistry(titles ...string) *book.Registry[book.Document] {
	entries := make([]book.Entry[book.Document], 0, len(titles))
	for _, title := range titles {
		path := "/" + strings.ToLower(title)
		entries = append(entries, book.Entry[book.Document]{
			Title:      title,
			Completion: "50%",
			Path:       path,
			Content: book.Document{
				File:     strings.ToLower(title) + ".md",
				Markdown: "# " + title + "\n\nBody of " + title + ".",
			},
		})
	}
	return book.New(entries)
}

func newTestServer(t *testing.T, reg *book.Registry[book.Document], opts ...Option) http.Handler {
	t.Helper()
	s, err := New(reg, render.NewRenderer(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s.Handler()
}

func get(t *testing.T, h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChapterPages(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha", "Beta", "Gamma"))

	tests := []struct {
		path     string
		contains []string
		excludes []string
	}{
		{
			path:     "/alpha",
			contains: []string{"Chapter 1", `<h1 id="alpha">Alpha</h1>`, `<a rel="next" href="/beta">`},
			excludes: []string{`rel="prev"`},
		},
		{
			path:     "/beta",
			contains: []string{"Chapter 2", `<a rel="prev" href="/alpha">`, `<a rel="next" href="/gamma">`},
		},
		{
			path:     "/gamma",
			contains: []string{"Chapter 3", "50% done", `<a rel="prev" href="/beta">`},
			excludes: []string{`rel="next"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(body, bad) {
					t.Errorf("body contains %q", bad)
				}
			}
		})
	}
}

func TestTableOfContents(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha", "Beta"), WithTitle("Test book"))

	rec := get(t, h, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	alpha := strings.Index(body, `<li value="1"><a href="/alpha">Alpha</a>`)
	beta := strings.Index(body, `<li value="2"><a href="/beta">Beta</a>`)
	if alpha < 0 || beta < 0 || alpha > beta {
		t.Errorf("table of contents out of order:\n%s", body)
	}
	if !strings.Contains(body, "<h1>Test book</h1>") {
		t.Errorf("title missing:\n%s", body)
	}
}

func TestEmptyBook(t *testing.T) {
	h := newTestServer(t, testRegistry())

	rec := get(t, h, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No chapters yet.") {
		t.Errorf("unexpected body:\n%s", rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha"))

	rec := get(t, h, "/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConditionalGet(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha"))

	first := get(t, h, "/alpha", nil)
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}

	again := get(t, h, "/alpha", map[string]string{"If-None-Match": etag})
	if again.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", again.Code)
	}
	if again.Body.Len() != 0 {
		t.Errorf("304 carried a body of %d bytes", again.Body.Len())
	}

	stale := get(t, h, "/alpha", map[string]string{"If-None-Match": `"stale"`})
	if stale.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", stale.Code)
	}
}

func TestGzip(t *testing.T) {
	reg := book.New([]book.Entry[book.Document]{{
		Title:      "Long",
		Completion: "100%",
		Path:       "/long",
		Content: book.Document{
			File:     "long.md",
			Markdown: strings.Repeat("Processes are cheap in Elixir.\n\n", 200),
		},
	}})
	h := newTestServer(t, reg)

	rec := get(t, h, "/long", map[string]string{"Accept-Encoding": "gzip"})
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}
	if !strings.Contains(string(body), "Processes are cheap in Elixir.") {
		t.Error("decompressed body missing chapter text")
	}
}

func TestDuplicatePath(t *testing.T) {
	reg := book.New([]book.Entry[book.Document]{
		{Title: "First", Path: "/same", Content: book.Document{Markdown: "first"}},
		{Title: "Second", Path: "/same", Content: book.Document{Markdown: "second"}},
	})
	h := newTestServer(t, reg)

	rec := get(t, h, "/same", nil)
	if !strings.Contains(rec.Body.String(), "<p>first</p>") {
		t.Errorf("duplicate path did not serve the first chapter:\n%s", rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", "go1.24.0")
	h := newTestServer(t, testRegistry("Alpha", "Beta"), WithMetrics(m))

	get(t, h, "/alpha", nil)
	get(t, h, "/alpha", nil)
	get(t, h, "/nowhere", nil)

	if got := testutil.ToFloat64(m.PageViewsTotal.WithLabelValues("/alpha", "200")); got != 2 {
		t.Errorf("views of /alpha = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PageViewsTotal.WithLabelValues("unmatched", "404")); got != 1 {
		t.Errorf("unmatched views = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Chapters); got != 2 {
		t.Errorf("chapters gauge = %v, want 2", got)
	}

	rec := get(t, h, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "book_page_views_total") {
		t.Errorf("/metrics status %d", rec.Code)
	}
}

func TestMetricsDisabled(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha"))

	if rec := get(t, h, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics status = %d, want 404", rec.Code)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(book.Document) (template.HTML, error) {
	return "", errors.New("renderer exploded")
}

func TestNewErrors(t *testing.T) {
	if _, err := New(testRegistry("Alpha"), failingRenderer{}); err == nil || !strings.Contains(err.Error(), "renderer exploded") {
		t.Errorf("renderer error = %v", err)
	}

	for _, path := range []string{"/metrics", "/", "/:id", "/files/*rest", "relative"} {
		reg := book.New([]book.Entry[book.Document]{{Title: "Bad", Path: path}})
		if _, err := New(reg, render.NewRenderer()); err == nil {
			t.Errorf("path %q accepted", path)
		}
	}
}

func TestETagMatch(t *testing.T) {
	const etag = `"abc123"`

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc123"`, true},
		{`W/"abc123"`, true},
		{`"other", "abc123"`, true},
		{`"other",W/"abc123"`, true},
		{"*", true},
		{` * `, true},
		{`"other"`, false},
		{`abc123`, false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := etagMatch(tt.header, etag); got != tt.want {
				t.Errorf("etagMatch(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestConditionalGetLists(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha"))
	etag := get(t, h, "/alpha", nil).Header().Get("ETag")

	for _, header := range []string{`"stale", ` + etag, "W/" + etag, "*"} {
		rec := get(t, h, "/alpha", map[string]string{"If-None-Match": header})
		if rec.Code != http.StatusNotModified {
			t.Errorf("If-None-Match %q: status = %d, want 304", header, rec.Code)
		}
	}
}

func TestHead(t *testing.T) {
	h := newTestServer(t, testRegistry("Alpha"))

	for _, path := range []string{"/", "/alpha"} {
		req := httptest.NewRequest(http.MethodHead, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("HEAD %s: status = %d, want 200", path, rec.Code)
		}
		if rec.Header().Get("ETag") == "" {
			t.Errorf("HEAD %s: no ETag", path)
		}
	}

	req := httptest.NewRequest(http.MethodHead, "/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("HEAD /missing: status = %d, want 404", rec.Code)
	}
}
