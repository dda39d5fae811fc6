// Package plot renders comparison figures from decoded run results:
// longitudinal energy-deposition profiles, neutron exit spectra, total
// deposition bars, and 2D deposition heatmaps.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/results"
)

// Format selects the chart encoder.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

var palette = []drawing.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
	{R: 227, G: 119, B: 194, A: 255},
	{R: 127, G: 127, B: 127, A: 255},
}

// Overrides carries per-run presentation settings from the analysis
// config: explicit stroke colors per run, solid/dashed per engine.
type Overrides struct {
	colors map[string]drawing.Color
	lines  map[string]string
}

// FromStyle converts analysis-config styling (hex colors keyed
// engine/model, line styles keyed engine) into chart overrides.
func FromStyle(s config.Style) *Overrides {
	ov := &Overrides{
		colors: make(map[string]drawing.Color),
		lines:  make(map[string]string),
	}
	for engine, byModel := range s.Colors {
		for model, hex := range byModel {
			ov.colors[engine+"/"+model] = drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
		}
	}
	for engine, style := range s.LineStyles {
		ov.lines[engine] = style
	}
	return ov
}

// seriesStyle gives FLUKA runs solid strokes and Geant4 runs dashed
// ones so the two engines are distinguishable at a glance; explicit
// overrides win over both the palette and the dash convention.
func (o *Overrides) seriesStyle(label string, i int) chart.Style {
	style := chart.Style{
		StrokeColor: palette[i%len(palette)],
		StrokeWidth: 2.0,
	}
	dashed := strings.HasPrefix(label, "geant4/")
	if o != nil {
		if c, ok := o.colors[label]; ok {
			style.StrokeColor = c
		}
		if ls, ok := o.lines[engineOf(label)]; ok {
			dashed = ls == "dashed"
		}
	}
	if dashed {
		style.StrokeDashArray = []float64{6.0, 4.0}
	}
	return style
}

func engineOf(label string) string {
	if i := strings.Index(label, "/"); i >= 0 {
		return label[:i]
	}
	return label
}

// LineOptions controls a comparison line chart.
type LineOptions struct {
	Title  string
	Format Format
	Linear bool       // linear Y axis instead of the default log
	Styles *Overrides // optional, nil uses the palette
}

func sortedLabels(curves map[string]results.Curve) []string {
	labels := make([]string, 0, len(curves))
	for label := range curves {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// positiveFloor replaces non-positive samples so log-scale axes stay
// defined. The floor sits six decades below the curve maximum; a wider
// span makes the log axis degenerate and the rasterizer crawl.
func positiveFloor(ys []float64) []float64 {
	max := 0.0
	for _, y := range ys {
		if y > max {
			max = y
		}
	}
	if max <= 0 {
		max = 1
	}
	floor := max * 1e-6
	out := make([]float64, len(ys))
	for i, y := range ys {
		if y < floor {
			out[i] = floor
		} else {
			out[i] = y
		}
	}
	return out
}

// Profiles renders all runs' longitudinal deposition profiles on a
// shared axis, log-Y unless opts says otherwise.
func Profiles(w io.Writer, curves map[string]results.Curve, opts LineOptions) error {
	if len(curves) == 0 {
		return fmt.Errorf("plot: no profiles to draw")
	}
	var series []chart.Series
	for i, label := range sortedLabels(curves) {
		c := curves[label]
		ys := c.Y
		if !opts.Linear {
			ys = positiveFloor(c.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label,
			XValues: c.X,
			YValues: ys,
			Style:   opts.Styles.seriesStyle(label, i),
		})
	}
	graph := chart.Chart{
		Title:      opts.Title,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Depth (cm)"},
		YAxis: chart.YAxis{
			Name:  "Energy deposition (GeV/primary)",
			Range: yRange(opts),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(opts.Format.provider(), w)
}

func yRange(opts LineOptions) chart.Range {
	if opts.Linear {
		return &chart.ContinuousRange{}
	}
	return &chart.LogarithmicRange{}
}

// Ratios renders each run's profile divided by the reference run's,
// interpolated onto the reference binning, with guide lines at 1.0 and
// ±10%. Ratios are always on a linear axis; opts.Linear is ignored.
func Ratios(w io.Writer, curves map[string]results.Curve, reference string, opts LineOptions) error {
	ref, ok := curves[reference]
	if !ok {
		return fmt.Errorf("plot: reference run %q has no data", reference)
	}
	var series []chart.Series
	for _, guide := range []struct {
		y     float64
		color drawing.Color
	}{
		{1.0, drawing.Color{R: 0, G: 0, B: 0, A: 255}},
		{0.9, drawing.Color{R: 128, G: 128, B: 128, A: 255}},
		{1.1, drawing.Color{R: 128, G: 128, B: 128, A: 255}},
	} {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{ref.X[0], ref.X[len(ref.X)-1]},
			YValues: []float64{guide.y, guide.y},
			Style: chart.Style{
				StrokeColor:     guide.color,
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{2.0, 2.0},
			},
		})
	}
	for i, label := range sortedLabels(curves) {
		if label == reference {
			continue
		}
		onRef := results.Interp(ref.X, curves[label])
		ratio := make([]float64, len(ref.X))
		for j := range ratio {
			if ref.Y[j] != 0 {
				ratio[j] = onRef[j] / ref.Y[j]
			} else {
				ratio[j] = 1
			}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label,
			XValues: ref.X,
			YValues: ratio,
			Style:   opts.Styles.seriesStyle(label, i),
		})
	}
	graph := chart.Chart{
		Title:      opts.Title,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Depth (cm)"},
		YAxis:      chart.YAxis{Name: "Ratio to " + reference},
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(opts.Format.provider(), w)
}

// Spectra renders neutron exit spectra with both axes logarithmic in
// effect: energies are plotted as log10(E) to keep decades evenly
// spaced, fluence on a log-Y axis unless opts says otherwise.
func Spectra(w io.Writer, curves map[string]results.Curve, opts LineOptions) error {
	if len(curves) == 0 {
		return fmt.Errorf("plot: no spectra to draw")
	}
	var series []chart.Series
	for i, label := range sortedLabels(curves) {
		c := curves[label]
		xs := make([]float64, len(c.X))
		for j, x := range c.X {
			if x <= 0 {
				x = 1e-14
			}
			xs[j] = math.Log10(x)
		}
		ys := c.Y
		if !opts.Linear {
			ys = positiveFloor(c.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label,
			XValues: xs,
			YValues: ys,
			Style:   opts.Styles.seriesStyle(label, i),
		})
	}
	graph := chart.Chart{
		Title:      opts.Title,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "log10 Energy (GeV)"},
		YAxis: chart.YAxis{
			Name:  "Fluence (1/cm^2/GeV/primary)",
			Range: yRange(opts),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(opts.Format.provider(), w)
}

// Total is one run's integrated deposition with its statistical error.
type Total struct {
	Label    string
	Value    float64
	RelError float64
}

// Totals renders integrated deposition per run as a bar chart.
func Totals(w io.Writer, totals []Total, title string, format Format) error {
	if len(totals) == 0 {
		return fmt.Errorf("plot: no totals to draw")
	}
	sorted := make([]Total, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	bars := make([]chart.Value, len(sorted))
	for i, tot := range sorted {
		bars[i] = chart.Value{
			Label: tot.Label,
			Value: tot.Value,
			Style: chart.Style{FillColor: palette[i%len(palette)], StrokeColor: palette[i%len(palette)]},
		}
	}
	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:   40,
		YAxis:      chart.YAxis{Name: "Total deposition (GeV/primary)"},
		Bars:       bars,
	}
	return graph.Render(format.provider(), w)
}

// Spread renders the per-bin min/max envelope across all model
// profiles around their mean, a quick view of model disagreement.
func Spread(w io.Writer, curves map[string]results.Curve, title string, format Format) error {
	labels := sortedLabels(curves)
	if len(labels) < 2 {
		return fmt.Errorf("plot: spread needs at least two runs, have %d", len(labels))
	}
	base := curves[labels[0]]
	n := len(base.X)
	mean := make([]float64, n)
	min := make([]float64, n)
	max := make([]float64, n)
	for j := 0; j < n; j++ {
		min[j] = math.Inf(1)
		max[j] = math.Inf(-1)
	}
	for _, label := range labels {
		ys := results.Interp(base.X, curves[label])
		for j, y := range ys {
			mean[j] += y / float64(len(labels))
			if y < min[j] {
				min[j] = y
			}
			if y > max[j] {
				max[j] = y
			}
		}
	}
	graph := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Depth (cm)"},
		YAxis: chart.YAxis{
			Name:  "Energy deposition (GeV/primary)",
			Range: &chart.LogarithmicRange{},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "min",
				XValues: base.X,
				YValues: positiveFloor(min),
				Style:   chart.Style{StrokeColor: palette[0], StrokeWidth: 1.0, StrokeDashArray: []float64{4, 3}},
			},
			chart.ContinuousSeries{
				Name:    "mean",
				XValues: base.X,
				YValues: positiveFloor(mean),
				Style:   chart.Style{StrokeColor: drawing.Color{R: 0, G: 0, B: 0, A: 255}, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "max",
				XValues: base.X,
				YValues: positiveFloor(max),
				Style:   chart.Style{StrokeColor: palette[3], StrokeWidth: 1.0, StrokeDashArray: []float64{4, 3}},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(format.provider(), w)
}

// WriteFile renders with fn into path, creating parent directories.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
