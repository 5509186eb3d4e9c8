package gateway

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

// Series names shown in the chart legend.
const (
	SeriesIssues    = "Issues (all)"
	SeriesIssuesBug = "Issues (bug)"
	SeriesPRs       = "PRs"
)

// Charter renders label buckets as a chart.
type Charter interface {
	Render(w io.Writer, title string, buckets []domain.LabelBucket) error
}

// BarChart renders buckets as an interactive HTML bar chart. Hovering a
// category shows its issue and PR counts; clicking a legend entry hides that series.
type BarChart struct {
	Width string
}

// NewBarChart returns a BarChart with the default page width.
func NewBarChart() *BarChart {
	return &BarChart{Width: "800px"}
}

func (c *BarChart) Render(w io.Writer, title string, buckets []domain.LabelBucket) error {
	categories := make([]string, 0, len(buckets))
	issues := make([]opts.BarData, 0, len(buckets))
	bugs := make([]opts.BarData, 0, len(buckets))
	prs := make([]opts.BarData, 0, len(buckets))
	for _, b := range buckets {
		categories = append(categories, b.Label)
		issues = append(issues, opts.BarData{Name: b.Label, Value: b.Issues})
		bugs = append(bugs, opts.BarData{Name: b.Label, Value: b.IssuesBug})
		prs = append(prs, opts.BarData{Name: b.Label, Value: b.PRs})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Open issues/PRs by label",
			Width:     c.Width,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:     opts.Bool(true),
			Top:      "bottom",
			Left:     "left",
			Selected: map[string]bool{SeriesIssuesBug: false},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "#"}),
	)
	bar.SetXAxis(categories).
		AddSeries(SeriesIssues, issues, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9A44B6"})).
		AddSeries(SeriesIssuesBug, bugs, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#A60628"})).
		AddSeries(SeriesPRs, prs, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#338ADD"}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
