package analyze

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

// Report bundles every aggregate the static artifacts render.
type Report struct {
	Source           string
	Summary          model.Summary
	FrequencyConfigs model.ChartSeries
	FrequencyRecords model.ChartSeries
	TopSites         model.ChartSeries
	Hourly           model.ChartSeries
	TopCustomers     model.ChartSeries
	StartTimes       model.ChartSeries
	TimeCategories   model.ChartSeries
	Durations        []float64
	DurationStats    model.DurationStats
}

// BuildReport computes every aggregate for one grouped dataset.
func BuildReport(source string, t *dataset.Table) *Report {
	durations := Durations(t)
	return &Report{
		Source:           source,
		Summary:          Summarize(source, t),
		FrequencyConfigs: FrequencyConfigSeries(t),
		FrequencyRecords: FrequencyRecordSeries(t),
		TopSites:         TopSitesSeries(t, 10),
		Hourly:           HourlySeries(t),
		TopCustomers:     TopCustomersSeries(t, 8),
		StartTimes:       TopStartTimesSeries(t, 10),
		TimeCategories:   TimeCategorySeries(t),
		Durations:        durations,
		DurationStats:    DurationStats(durations),
	}
}

// RenderDashboard renders the six-panel analysis dashboard PNG.
func RenderDashboard(r *Report, path string) error {
	configs, err := barPanel("Configurations by frequency", r.FrequencyConfigs, false, 0)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	records, err := barPanel("Records by frequency", r.FrequencyRecords, false, 1)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	sites, err := barPanel("Top sites by records", r.TopSites, true, 2)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	hourly, err := barPanel("Records by hour of day", r.Hourly, false, 3)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	durations, err := histPanel("Scheduling window minutes", r.Durations, 16)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	customers, err := barPanel("Top customers by records", r.TopCustomers, true, 4)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}

	grid := [][]*plot.Plot{
		{configs, records},
		{sites, hourly},
		{durations, customers},
	}
	if err := writeGrid(grid, vg.Points(1200), vg.Points(1350), path); err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	fmt.Printf("💾 Analysis dashboard written to %s\n", path)
	return nil
}

// RenderTimeAnalysis renders the start-hour and time-category panels.
func RenderTimeAnalysis(r *Report, path string) error {
	hourly, err := barPanel("Start hour distribution", r.Hourly, false, 0)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	categories, err := barPanel("Records by time of day", r.TimeCategories, false, 1)
	if err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}

	grid := [][]*plot.Plot{{hourly, categories}}
	if err := writeGrid(grid, vg.Points(1200), vg.Points(450), path); err != nil {
		return &model.RenderError{Artifact: path, Err: err}
	}
	fmt.Printf("💾 Time analysis written to %s\n", path)
	return nil
}

func barPanel(title string, s model.ChartSeries, horizontal bool, colorIdx int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title

	vals := make(plotter.Values, len(s.Values))
	copy(vals, s.Values)
	bar, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bar.LineStyle.Width = 0
	bar.Color = plotutil.Color(colorIdx)
	bar.Horizontal = horizontal
	p.Add(bar)
	if horizontal {
		p.NominalY(s.Labels...)
		p.X.Label.Text = "records"
	} else {
		p.NominalX(s.Labels...)
		p.Y.Label.Text = "records"
	}
	return p, nil
}

func histPanel(title string, values []float64, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	if len(values) == 0 {
		return p, nil
	}
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = plotutil.Color(5)
	p.Add(h)
	p.X.Label.Text = "minutes"
	return p, nil
}

// writeGrid aligns the plots into a tile grid and writes one PNG.
func writeGrid(grid [][]*plot.Plot, width, height vg.Length, path string) error {
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(grid),
		Cols: len(grid[0]),
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] != nil {
				grid[i][j].Draw(canvases[i][j])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
