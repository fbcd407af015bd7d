// Package pipeline turns the incident table and a filter selection into
// dashboard views: query, aggregate, map and preview.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/observability"
	"github.com/couchcryptid/sf-danger-zones/internal/store"
)

// Surfaces label where a computation was requested from.
const (
	SurfacePage = "page"
	SurfaceAPI  = "api"
	SurfaceWS   = "ws"
)

// ErrExportDisabled is returned by Export when no exporter is configured.
var ErrExportDisabled = errors.New("incident export is not configured")

// TableSource provides the loaded table.
type TableSource interface {
	Snapshot(ctx context.Context) (store.Snapshot, error)
}

// Exporter publishes incidents to a downstream consumer.
type Exporter interface {
	ExportIncidents(ctx context.Context, incidents []domain.Incident) error
}

// Settings tunes the dashboard views.
type Settings struct {
	MapZoom          float64
	PreviewRows      int
	SummaryCacheSize int
}

// Dashboard runs the filter, aggregate and render passes against the
// cached table. It holds no per-request state.
type Dashboard struct {
	source   TableSource
	exporter Exporter
	settings Settings
	cache    *summaryCache
	logger   *slog.Logger
	metrics  *observability.Metrics

	genMu          sync.Mutex
	lastGeneration uint64
}

// New creates a Dashboard. Pass a nil exporter to disable export.
func New(source TableSource, exporter Exporter, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	return &Dashboard{
		source:   source,
		exporter: exporter,
		settings: settings,
		cache:    newSummaryCache(settings.SummaryCacheSize),
		logger:   logger,
		metrics:  metrics,
	}
}

// ExportEnabled reports whether an exporter is configured.
func (d *Dashboard) ExportEnabled() bool {
	return d.exporter != nil
}

// Render runs the full pass for a page: options, selection from query,
// filtered summary, full-table map and preview.
func (d *Dashboard) Render(ctx context.Context, query url.Values) (domain.DashboardView, error) {
	start := time.Now()
	d.metrics.Renders.WithLabelValues(SurfacePage).Inc()

	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return domain.DashboardView{}, fmt.Errorf("load table: %w", err)
	}

	opts, err := Options(snap.Table)
	if err != nil {
		return domain.DashboardView{}, err
	}
	sel := domain.ParseSelection(query, opts)

	summary, err := d.summarize(snap, sel)
	if err != nil {
		return domain.DashboardView{}, err
	}

	// The map always shows the full table.
	mapView, err := BuildMap(snap.Table, d.settings.MapZoom)
	if err != nil {
		return domain.DashboardView{}, err
	}

	d.metrics.RenderDuration.Observe(time.Since(start).Seconds())

	return domain.DashboardView{
		Preview:   BuildPreview(snap.Table, d.settings.PreviewRows),
		Options:   opts,
		Selection: sel,
		Summary:   summary,
		Map:       mapView,
	}, nil
}

// Update recomputes only the filtered summary for a selection change.
func (d *Dashboard) Update(ctx context.Context, sel domain.Selection, surface string) (domain.Summary, error) {
	start := time.Now()
	d.metrics.Renders.WithLabelValues(surface).Inc()

	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("load table: %w", err)
	}
	summary, err := d.summarize(snap, sel)
	if err != nil {
		return domain.Summary{}, err
	}

	d.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	return summary, nil
}

// Options returns the filter options of the full table.
func (d *Dashboard) Options(ctx context.Context) (domain.Options, error) {
	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return domain.Options{}, fmt.Errorf("load table: %w", err)
	}
	return Options(snap.Table)
}

// Selection resolves query parameters against the current options.
func (d *Dashboard) Selection(ctx context.Context, query url.Values) (domain.Selection, error) {
	opts, err := d.Options(ctx)
	if err != nil {
		return domain.Selection{}, err
	}
	return domain.ParseSelection(query, opts), nil
}

// MapView returns the scatter map of the full table.
func (d *Dashboard) MapView(ctx context.Context) (domain.MapView, error) {
	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return domain.MapView{}, fmt.Errorf("load table: %w", err)
	}
	return BuildMap(snap.Table, d.settings.MapZoom)
}

// Preview returns the raw table preview.
func (d *Dashboard) Preview(ctx context.Context) (domain.TablePreview, error) {
	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return domain.TablePreview{}, fmt.Errorf("load table: %w", err)
	}
	return BuildPreview(snap.Table, d.settings.PreviewRows), nil
}

// Export hands the incidents matching sel to the exporter and returns how
// many were published.
func (d *Dashboard) Export(ctx context.Context, sel domain.Selection) (int, error) {
	if d.exporter == nil {
		return 0, ErrExportDisabled
	}
	if sel.MatchesNothing() {
		return 0, nil
	}

	snap, err := d.source.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("load table: %w", err)
	}
	view, err := Apply(snap.Table.All(), sel)
	if err != nil {
		return 0, err
	}
	incidents, err := Incidents(view)
	if err != nil {
		return 0, err
	}
	if len(incidents) == 0 {
		return 0, nil
	}

	if err := d.exporter.ExportIncidents(ctx, incidents); err != nil {
		d.metrics.Exports.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("export incidents: %w", err)
	}
	d.metrics.Exports.WithLabelValues("success").Inc()
	d.logger.Info("incidents exported", "count", len(incidents))
	return len(incidents), nil
}

// summarize filters and aggregates, memoized per table generation.
func (d *Dashboard) summarize(snap store.Snapshot, sel domain.Selection) (domain.Summary, error) {
	d.dropStale(snap.Generation)

	key := fmt.Sprintf("%d|%s", snap.Generation, sel.Key())
	if summary, ok := d.cache.get(key); ok {
		d.metrics.SummaryCache.WithLabelValues("hit").Inc()
		return summary, nil
	}
	d.metrics.SummaryCache.WithLabelValues("miss").Inc()

	view, err := Apply(snap.Table.All(), sel)
	if err != nil {
		return domain.Summary{}, err
	}
	summary, err := Summarize(view)
	if err != nil {
		return domain.Summary{}, err
	}

	d.metrics.FilteredRows.Observe(float64(summary.Rows))
	d.logger.Debug("summary computed",
		"rows", summary.Rows,
		"categories", len(summary.ByCategory),
		"generation", snap.Generation,
	)
	d.cache.put(key, summary)
	return summary, nil
}

// dropStale purges cached summaries once a newer table generation appears.
func (d *Dashboard) dropStale(generation uint64) {
	d.genMu.Lock()
	stale := generation > d.lastGeneration
	if stale {
		d.lastGeneration = generation
	}
	d.genMu.Unlock()
	if stale {
		d.cache.purge()
	}
}
