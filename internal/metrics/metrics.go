// Package metrics holds the Prometheus collectors for the book site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics uses its own registry so tests never share collectors.
type Metrics struct {
	Registry *prometheus.Registry

	PageViewsTotal    *prometheus.CounterVec
	PageRenderSeconds prometheus.Histogram
	Chapters          prometheus.Gauge
	MCPToolCallsTotal *prometheus.CounterVec
	BuildInfo         *prometheus.GaugeVec
}

// New creates a Metrics instance with all collectors registered. The version
// and goVersion are recorded as labels on book_info.
func New(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		PageViewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_page_views_total",
				Help: "Total page requests by route and status code.",
			},
			[]string{"path", "status"},
		),
		PageRenderSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "book_page_render_seconds",
				Help:    "Time spent rendering a chapter page at startup.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		Chapters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "book_chapters",
				Help: "Number of chapters in the registry.",
			},
		),
		MCPToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_mcp_tool_calls_total",
				Help: "Total MCP tool calls by tool and result.",
			},
			[]string{"tool", "result"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "book_info",
				Help: "Build information.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.PageViewsTotal,
		m.PageRenderSeconds,
		m.Chapters,
		m.MCPToolCallsTotal,
		m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// Handler serves the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
