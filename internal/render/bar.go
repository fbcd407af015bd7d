package render

import (
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartsrender "github.com/go-echarts/go-echarts/v2/render"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
)

const (
	// BarChartID is the DOM id of the category chart; live updates look it up.
	BarChartID = "category-bar"

	barTitle      = "Areas of vulnerability by Category"
	barColor      = "#0083B8"
	barBackground = "#ffffff"
)

// CategoryBar builds the horizontal vulnerability-by-category chart. Bars
// are drawn in the order given.
func CategoryBar(totals []domain.CategoryTotal) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: barTitle}),
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: barBackground,
			Height:          "420px",
			Width:           "100%",
			ChartID:         BarChartID,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      domain.ColVulnerabilityAreas,
			SplitLine: &opts.SplitLine{Show: boolPtr(false)},
		}),
	)

	names := make([]string, len(totals))
	values := make([]opts.BarData, len(totals))
	for i, t := range totals {
		names[i] = t.Category
		values[i] = opts.BarData{Value: t.Value}
	}

	bar.SetXAxis(names).
		AddSeries(domain.ColVulnerabilityAreas, values,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: barColor}),
		).
		XYReversal()
	return bar
}

// BarSnippet renders the chart as an embeddable element and script.
func BarSnippet(totals []domain.CategoryTotal) template.HTML {
	return snippet(CategoryBar(totals))
}

type snippetRenderer interface {
	RenderSnippet() echartsrender.ChartSnippet
}

func snippet(c snippetRenderer) template.HTML {
	s := c.RenderSnippet()
	return template.HTML(s.Element + "\n" + s.Script) //nolint:gosec // generated by go-echarts
}

func boolPtr(b bool) *bool { return &b }
