package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Table loading.
	TableLoads        *prometheus.CounterVec // labels: outcome={success,error}
	TableLoadDuration prometheus.Histogram
	TableCache        *prometheus.CounterVec // labels: result={hit,miss}
	TableRows         prometheus.Gauge

	// Rendering.
	Renders        *prometheus.CounterVec // labels: surface={page,api,ws}
	RenderDuration prometheus.Histogram
	FilteredRows   prometheus.Histogram
	SummaryCache   *prometheus.CounterVec // labels: result={hit,miss}

	// Map and export.
	MapTokenValid prometheus.Gauge
	Exports       *prometheus.CounterVec // labels: outcome={success,error}

	WebSocketClients prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.TableLoads,
		m.TableLoadDuration,
		m.TableCache,
		m.TableRows,
		m.Renders,
		m.RenderDuration,
		m.FilteredRows,
		m.SummaryCache,
		m.MapTokenValid,
		m.Exports,
		m.WebSocketClients,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TableLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "danger_zones",
			Name:      "table_loads_total",
			Help:      "Workbook loads by outcome.",
		}, []string{"outcome"}),
		TableLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "danger_zones",
			Name:      "table_load_duration_seconds",
			Help:      "Time to read and parse the incident workbook.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		TableCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "danger_zones",
			Name:      "table_cache_total",
			Help:      "Table lookups served from memory (hit) or by loading (miss).",
		}, []string{"result"}),
		TableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "danger_zones",
			Name:      "table_rows",
			Help:      "Rows in the currently loaded incident table.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "danger_zones",
			Name:      "renders_total",
			Help:      "Dashboard computations by surface.",
		}, []string{"surface"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "danger_zones",
			Name:      "render_duration_seconds",
			Help:      "Duration of a filter, aggregate and render pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "danger_zones",
			Name:      "filtered_rows",
			Help:      "Rows passing the current filter selection.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		SummaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "danger_zones",
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		MapTokenValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "danger_zones",
			Name:      "map_token_valid",
			Help:      "1 when the map access token was accepted by the provider, 0 otherwise.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "danger_zones",
			Name:      "exports_total",
			Help:      "Incident exports by outcome.",
		}, []string{"outcome"}),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "danger_zones",
			Name:      "websocket_clients",
			Help:      "Connected live-update clients.",
		}),
	}
}
