package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/observability"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
	"github.com/couchcryptid/sf-danger-zones/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct {
	table      *dataset.Table
	generation uint64
	err        error
	calls      atomic.Int64
}

func (m *mockSource) Snapshot(_ context.Context) (store.Snapshot, error) {
	m.calls.Add(1)
	if m.err != nil {
		return store.Snapshot{}, m.err
	}
	return store.Snapshot{Table: m.table, Generation: m.generation}, nil
}

type mockExporter struct {
	exported []domain.Incident
	err      error
}

func (m *mockExporter) ExportIncidents(_ context.Context, incidents []domain.Incident) error {
	if m.err != nil {
		return m.err
	}
	m.exported = append(m.exported, incidents...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func newDashboard(t *testing.T, src *mockSource, exp pipeline.Exporter, metrics *observability.Metrics) *pipeline.Dashboard {
	t.Helper()
	if src.generation == 0 {
		src.generation = 1
	}
	settings := pipeline.Settings{MapZoom: 12, PreviewRows: 0, SummaryCacheSize: 8}
	return pipeline.New(src, exp, settings, slog.Default(), metrics)
}

// --- tests ---

func TestDashboard_Render_DefaultSelectsEverything(t *testing.T) {
	src := &mockSource{table: threeRowTable(t)}
	d := newDashboard(t, src, nil, newTestMetrics())

	view, err := d.Render(context.Background(), url.Values{})
	require.NoError(t, err)

	assert.Equal(t, view.Options.Days, view.Selection.Days)
	assert.Equal(t, view.Options.Years, view.Selection.Years)
	assert.Equal(t, view.Options.Categories, view.Selection.Categories)
	assert.Equal(t, 3, view.Summary.Rows)
	assert.Equal(t, domain.KPIs{VulnerabilityAreas: 4, PoliceDistricts: 10, SupervisorDistricts: 18}, view.Summary.KPIs)
	assert.Len(t, view.Preview.Rows, 3)
	assert.Len(t, view.Map.Points, 3)
}

func TestDashboard_Render_EmptySelectionKeepsMap(t *testing.T) {
	src := &mockSource{table: threeRowTable(t)}
	d := newDashboard(t, src, nil, newTestMetrics())

	q := url.Values{}
	q.Set(domain.ParamFiltered, "1")
	q.Add(domain.ParamDay, "Monday")
	q.Add(domain.ParamYear, "2018")

	view, err := d.Render(context.Background(), q)
	require.NoError(t, err)

	assert.Empty(t, view.Selection.Categories)
	assert.Equal(t, 0, view.Summary.Rows)
	assert.Equal(t, domain.KPIs{}, view.Summary.KPIs)
	assert.Empty(t, view.Summary.ByCategory)
	// The map ignores the filters.
	assert.Len(t, view.Map.Points, 3)
	assert.Len(t, view.Preview.Rows, 3)
}

func TestDashboard_Render_SourceError(t *testing.T) {
	loadErr := errors.New("workbook missing")
	d := newDashboard(t, &mockSource{err: loadErr}, nil, newTestMetrics())

	_, err := d.Render(context.Background(), url.Values{})
	require.ErrorIs(t, err, loadErr)
}

func TestDashboard_Render_MissingColumn(t *testing.T) {
	table, err := dataset.New([]string{"Incident Day of Week"}, [][]string{{"Monday"}})
	require.NoError(t, err)
	d := newDashboard(t, &mockSource{table: table}, nil, newTestMetrics())

	_, err = d.Render(context.Background(), url.Values{})
	require.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestDashboard_Update_CachesSummary(t *testing.T) {
	metrics := newTestMetrics()
	src := &mockSource{table: fiveRowTable(t)}
	d := newDashboard(t, src, nil, metrics)
	sel := domain.Selection{Days: []string{"Monday"}, Years: []string{"2018"}, Categories: []string{"A", "B"}}

	first, err := d.Update(context.Background(), sel, pipeline.SurfaceAPI)
	require.NoError(t, err)
	// Same selection in a different order hits the cache.
	reordered := domain.Selection{Days: sel.Days, Years: sel.Years, Categories: []string{"B", "A"}}
	second, err := d.Update(context.Background(), reordered, pipeline.SurfaceAPI)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SummaryCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SummaryCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Renders.WithLabelValues(pipeline.SurfaceAPI)), 0)
}

func TestDashboard_Update_NewGenerationRecomputes(t *testing.T) {
	metrics := newTestMetrics()
	src := &mockSource{table: fiveRowTable(t)}
	d := newDashboard(t, src, nil, metrics)
	sel := domain.Selection{Days: []string{"Monday"}, Years: []string{"2018"}, Categories: []string{"A"}}

	before, err := d.Update(context.Background(), sel, pipeline.SurfaceWS)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Rows)

	src.table = threeRowTable(t)
	src.generation++

	after, err := d.Update(context.Background(), sel, pipeline.SurfaceWS)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Rows)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SummaryCache.WithLabelValues("miss")), 0)
}

func TestDashboard_Selection(t *testing.T) {
	d := newDashboard(t, &mockSource{table: threeRowTable(t)}, nil, newTestMetrics())

	sel, err := d.Selection(context.Background(), url.Values{
		domain.ParamFiltered: {"1"},
		domain.ParamYear:     {"2019", "2019"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2019"}, sel.Years)
	assert.Empty(t, sel.Days)
}

func TestDashboard_MapAndPreview(t *testing.T) {
	src := &mockSource{table: threeRowTable(t)}
	d := pipeline.New(src, nil, pipeline.Settings{MapZoom: 11, PreviewRows: 1}, slog.Default(), newTestMetrics())

	m, err := d.MapView(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 11.0, m.Zoom, 1e-9)
	assert.Len(t, m.Points, 3)

	p, err := d.Preview(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Rows, 1)
	assert.Equal(t, 3, p.Total)
}

func TestDashboard_Export(t *testing.T) {
	metrics := newTestMetrics()
	exp := &mockExporter{}
	d := newDashboard(t, &mockSource{table: threeRowTable(t)}, exp, metrics)
	require.True(t, d.ExportEnabled())

	n, err := d.Export(context.Background(), domain.Selection{
		Days:       []string{"Monday", "Tuesday"},
		Years:      []string{"2019"},
		Categories: []string{"Assault", "Larceny Theft"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, exp.exported, 2)
	assert.Equal(t, "Larceny Theft", exp.exported[0].Category)
	assert.Equal(t, 4, exp.exported[1].Row)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Exports.WithLabelValues("success")), 0)
}

func TestDashboard_Export_EmptySelectionSendsNothing(t *testing.T) {
	exp := &mockExporter{}
	src := &mockSource{table: threeRowTable(t)}
	d := newDashboard(t, src, exp, newTestMetrics())

	n, err := d.Export(context.Background(), domain.Selection{Days: []string{"Monday"}, Years: []string{"2019"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, exp.exported)
	assert.Zero(t, src.calls.Load())
}

func TestDashboard_Export_Disabled(t *testing.T) {
	d := newDashboard(t, &mockSource{table: threeRowTable(t)}, nil, newTestMetrics())
	assert.False(t, d.ExportEnabled())

	_, err := d.Export(context.Background(), domain.Selection{})
	require.ErrorIs(t, err, pipeline.ErrExportDisabled)
}

func TestDashboard_Export_Error(t *testing.T) {
	metrics := newTestMetrics()
	exp := &mockExporter{err: errors.New("broker down")}
	d := newDashboard(t, &mockSource{table: threeRowTable(t)}, exp, metrics)
	opts, err := d.Options(context.Background())
	require.NoError(t, err)

	_, err = d.Export(context.Background(), domain.DefaultSelection(opts))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Exports.WithLabelValues("error")), 0)
}
