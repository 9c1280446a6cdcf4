package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zzats/elixirtut/content"
	"github.com/zzats/elixirtut/internal/book"
	"github.com/zzats/elixirtut/internal/config"
	"github.com/zzats/elixirtut/internal/mcpserver"
	"github.com/zzats/elixirtut/internal/metrics"
	"github.com/zzats/elixirtut/internal/render"
	"github.com/zzats/elixirtut/internal/site"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	mcpMode := flag.Bool("mcp", false, "Serve the book over MCP on stdio instead of HTTP")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the MCP transport in stdio mode
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	reg, err := loadRegistry(cfg)
	if err != nil {
		logger.Error("loading chapters", "error", err)
		os.Exit(1)
	}
	logger.Info("chapters loaded", "count", reg.Len())

	m := metrics.New(version, runtime.Version())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *mcpMode {
		err = serveMCP(cfg, reg, m, logger)
	} else {
		err = serveHTTP(ctx, cfg, reg, m, logger)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadRegistry reads the chapter table and its markdown. Any missing file
// stops startup.
func loadRegistry(cfg config.Config) (*book.Registry[book.Document], error) {
	sources := book.Manifest()
	if cfg.Manifest != "" {
		var err error
		sources, err = book.LoadManifestFile(cfg.Manifest)
		if err != nil {
			return nil, err
		}
	}

	var fsys fs.FS = content.FS
	if cfg.ContentDir != "" {
		if _, err := os.Stat(cfg.ContentDir); err != nil {
			return nil, fmt.Errorf("book path %s: %w", cfg.ContentDir, err)
		}
		fsys = os.DirFS(cfg.ContentDir)
	}

	return book.LoadRegistry(fsys, sources)
}

// serveMCP speaks MCP on stdio. When metrics are enabled they are served over
// HTTP on cfg.Addr for as long as the stdio session lasts.
func serveMCP(cfg config.Config, reg *book.Registry[book.Document], m *metrics.Metrics, logger *slog.Logger) error {
	var counted *metrics.Metrics
	if cfg.Metrics {
		srv, addr, err := startMetrics(cfg.Addr, m, logger)
		if err != nil {
			return err
		}
		logger.Info("serving metrics", "addr", addr.String())
		defer shutdown(srv, logger)
		counted = m
	}

	s := mcpserver.New(reg, counted).MCPServer("Elixir Tutorial", version)

	logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s)
}

// startMetrics serves /metrics on addr in the background and returns the
// bound address.
func startMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) (*http.Server, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener %s: %w", addr, err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	srv := &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv, ln.Addr(), nil
}

func shutdown(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
}

func serveHTTP(ctx context.Context, cfg config.Config, reg *book.Registry[book.Document], m *metrics.Metrics, logger *slog.Logger) error {
	opts := []site.Option{site.WithLogger(logger)}
	if cfg.Metrics {
		opts = append(opts, site.WithMetrics(m))
	}
	s, err := site.New(reg, render.NewRenderer(), opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "metrics", cfg.Metrics)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
