// Package site serves the book as HTML pages, one route per chapter.
package site

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"

	"github.com/zzats/elixirtut/internal/book"
	"github.com/zzats/elixirtut/internal/metrics"
)

// Renderer turns chapter markdown into HTML
type Renderer interface {
	Render(doc book.Document) (template.HTML, error)
}

// Routes the chapters may not use
var reservedPaths = map[string]bool{
	"/":        true,
	"/metrics": true,
}

type chapterLink = book.Summary

// page is a fully rendered response body
type page struct {
	body []byte
	etag string
}

// Server renders every page once at construction and serves them from
// memory. Nothing in it changes after New returns.
type Server struct {
	title   string
	logger  *slog.Logger
	metrics *metrics.Metrics

	toc    page
	pages  map[string]page
	engine *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithTitle sets the book title shown on every page
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics records page views and exposes /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New renders all chapters of reg and registers their routes
func New(reg *book.Registry[book.Document], renderer Renderer, opts ...Option) (*Server, error) {
	s := &Server{
		title:  "Elixir tutorial",
		logger: slog.New(slog.DiscardHandler),
		pages:  make(map[string]page, reg.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.renderAll(reg, renderer); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Chapters.Set(float64(reg.Len()))
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.observe)
	s.handlePage("/", s.toc)
	for path, p := range s.pages {
		s.handlePage(path, p)
	}
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	s.engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "chapter not found: %s", c.Request.URL.Path)
	})

	return s, nil
}

// Handler returns the HTTP handler with gzip compression applied
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.engine)
}

func (s *Server) renderAll(reg *book.Registry[book.Document], renderer Renderer) error {
	toc := tocView{Book: s.title, Chapters: make([]chapterLink, 0, reg.Len())}

	for _, ch := range reg.Chapters() {
		if err := checkRoute(ch.Path); err != nil {
			return fmt.Errorf("chapter %d (%s): %w", ch.Number, ch.Title, err)
		}
		toc.Chapters = append(toc.Chapters, book.Summarize(ch))
		if _, ok := s.pages[ch.Path]; ok {
			s.logger.Warn("duplicate chapter path", "path", ch.Path, "number", ch.Number)
			continue
		}

		start := time.Now()
		p, err := s.renderChapter(reg, renderer, ch)
		if err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.PageRenderSeconds.Observe(time.Since(start).Seconds())
		}
		s.pages[ch.Path] = p
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "toc", toc); err != nil {
		return fmt.Errorf("error rendering table of contents: %w", err)
	}
	s.toc = newPage(buf.Bytes())
	return nil
}

func (s *Server) renderChapter(reg *book.Registry[book.Document], renderer Renderer, ch book.Chapter[book.Document]) (page, error) {
	content, err := renderer.Render(ch.Content)
	if err != nil {
		return page{}, fmt.Errorf("chapter %d (%s): %w", ch.Number, ch.Title, err)
	}
	prev, err := reg.Previous(ch)
	if err != nil {
		return page{}, err
	}
	next, err := reg.Next(ch)
	if err != nil {
		return page{}, err
	}

	view := chapterView{
		Book:     s.title,
		Chapter:  book.Summarize(ch),
		Content:  content,
		Previous: summarizeAll(prev),
		Next:     summarizeAll(next),
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "chapter", view); err != nil {
		return page{}, fmt.Errorf("error rendering chapter %d (%s): %w", ch.Number, ch.Title, err)
	}
	return newPage(buf.Bytes()), nil
}

// handlePage answers GET and HEAD for path
func (s *Server) handlePage(path string, p page) {
	h := s.servePage(p)
	s.engine.GET(path, h)
	s.engine.HEAD(path, h)
}

func (s *Server) servePage(p page) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("ETag", p.etag)
		c.Header("Cache-Control", "no-cache")
		if etagMatch(c.GetHeader("If-None-Match"), p.etag) {
			c.Status(http.StatusNotModified)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", p.body)
	}
}

// observe logs each request and counts it by route
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	if s.metrics != nil {
		s.metrics.PageViewsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration", time.Since(start),
	)
}

// etagMatch reports whether an If-None-Match value names etag. Weak and
// strong tags compare equal, and "*" matches any page.
func etagMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

func newPage(body []byte) page {
	sum := blake3.Sum256(body)
	return page{
		body: body,
		etag: `"` + hex.EncodeToString(sum[:16]) + `"`,
	}
}

func summarizeAll(chapters []book.Chapter[book.Document]) []chapterLink {
	out := make([]chapterLink, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, book.Summarize(ch))
	}
	return out
}

// checkRoute rejects paths the router would treat as patterns or that
// collide with built-in routes.
func checkRoute(path string) error {
	if reservedPaths[path] {
		return fmt.Errorf("path %s is reserved", path)
	}
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, ":*") {
		return fmt.Errorf("path %q is not a plain route", path)
	}
	return nil
}
