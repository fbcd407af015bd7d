// Package render produces the dashboard HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page titles and KPI labels.
const (
	PageTitle    = "Danger Zones in San Francisco"
	Heading      = "San Francisco Danger Zones"
	MapHeading   = "San Francisco Crime Zones"
	MapMarker    = 14
	MapBearing   = 0
	MapPitch     = 0
	kpiAreas     = "Total Areas of Vulnerability:"
	kpiPolice    = "Total Current Police Districts:"
	kpiSuperv    = "Total Current Supervisor Districts:"
	sidebarTitle = "Please Filter Here:"
)

// MapSettings configures the client-side map. An empty token disables it.
type MapSettings struct {
	Token string
	Style string
}

// Enabled reports whether the map can be drawn.
func (m MapSettings) Enabled() bool {
	return m.Token != ""
}

type filter struct {
	Param   string
	Label   string
	Options []string
}

type kpi struct {
	ID    string
	Label string
	Value int64
}

type pageData struct {
	Title         string
	Heading       string
	MapHeading    string
	SidebarTitle  string
	View          domain.DashboardView
	Filters       []filter
	KPIs          []kpi
	Bar           template.HTML
	BarChartID    string
	Map           MapSettings
	MapMarker     int
	MapBearing    int
	MapPitch      int
	FilteredParam string
	ExportEnabled bool
}

// Renderer executes the embedded dashboard template.
type Renderer struct {
	tmpl          *template.Template
	mapSettings   MapSettings
	exportEnabled bool
}

// New parses the embedded templates.
func New(mapSettings MapSettings, exportEnabled bool) (*Renderer, error) {
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"selected": func(sel domain.Selection, param, value string) bool {
			return sel.Has(param, value)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, mapSettings: mapSettings, exportEnabled: exportEnabled}, nil
}

// Dashboard writes the full page for view. Output is buffered so a template
// error never leaves a half-written page.
func (r *Renderer) Dashboard(w io.Writer, view domain.DashboardView) error {
	data := pageData{
		Title:        PageTitle,
		Heading:      Heading,
		MapHeading:   MapHeading,
		SidebarTitle: sidebarTitle,
		View:         view,
		Filters: []filter{
			{domain.ParamDay, "Select the WeekDay of the Incident:", view.Options.Days},
			{domain.ParamYear, "Select the year of the Incident:", view.Options.Years},
			{domain.ParamCategory, "Select the category of the incident:", view.Options.Categories},
		},
		KPIs: []kpi{
			{"kpi-areas", kpiAreas, view.Summary.KPIs.VulnerabilityAreas},
			{"kpi-police", kpiPolice, view.Summary.KPIs.PoliceDistricts},
			{"kpi-supervisors", kpiSuperv, view.Summary.KPIs.SupervisorDistricts},
		},
		Bar:           BarSnippet(view.Summary.ByCategory),
		BarChartID:    BarChartID,
		Map:           r.mapSettings,
		MapMarker:     MapMarker,
		MapBearing:    MapBearing,
		MapPitch:      MapPitch,
		FilteredParam: domain.ParamFiltered,
		ExportEnabled: r.exportEnabled,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
