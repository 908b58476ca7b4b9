// Package diagnostics renders PNG plots of grading and terrain inputs so a
// configuration can be checked before meshing.
package diagnostics

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/terramesh/internal/grading"
	"github.com/Faultbox/terramesh/internal/terrain"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Plot size.
const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

// Series is one named line.
type Series struct {
	Name string
	X, Y []float64
}

// PlotSeries draws each series as a line and saves the plot to path.
func PlotSeries(title, xLabel, yLabel string, series []Series, path string) error {
	if len(series) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: %d x values, %d y values", s.Name, len(s.X), len(s.Y))
		}
		if len(s.X) == 0 {
			return fmt.Errorf("series %q: %w", s.Name, ErrNoData)
		}
		pts := make(plotter.XYs, len(s.X))
		for k := range s.X {
			pts[k] = plotter.XY{X: s.X[k], Y: s.Y[k]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	return p.Save(width, height, path)
}

// PlotGrading plots block width and expansion ratio against position along
// the axis.
func PlotGrading(res *grading.Result, axis string, path string) error {
	if res == nil || len(res.Boundaries) < 2 {
		return ErrNoData
	}
	widths := res.Widths()
	xs := make([]float64, 0, 2*len(widths))
	ws := make([]float64, 0, 2*len(widths))
	for i, w := range widths {
		// Step shape: constant over each block.
		xs = append(xs, res.Boundaries[i], res.Boundaries[i+1])
		ws = append(ws, w, w)
	}
	return PlotSeries(
		fmt.Sprintf("Grading along %s (%d blocks)", axis, len(widths)),
		"Position", "Block width",
		[]Series{{Name: "width", X: xs, Y: ws}},
		path,
	)
}

// PlotProfile plots the memoised hill height against distance with n
// samples, together with the exact parametric profile.
func PlotProfile(p *terrain.Profile, n int, path string) error {
	if p == nil || n < 2 {
		return ErrNoData
	}
	ds := make([]float64, n)
	hs := make([]float64, n)
	exactD := make([]float64, n)
	exactH := make([]float64, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		ds[i] = 1.1 * p.Radius * t
		hs[i] = p.Height(ds[i])
		exactD[i] = p.Distance(p.Radius * t)
		exactH[i] = p.Elevation(p.Radius * t)
	}
	return PlotSeries(
		fmt.Sprintf("Hill profile R=%g H=%g step=%g", p.Radius, p.MaxHeight, p.Step),
		"Distance", "Height",
		[]Series{
			{Name: "height(d)", X: ds, Y: hs},
			{Name: "parametric", X: exactD, Y: exactH},
		},
		path,
	)
}

// PlotOval plots an oval hill along its major and minor axes with n samples
// each.
func PlotOval(o *terrain.Oval, n int, path string) error {
	if o == nil || n < 2 {
		return ErrNoData
	}
	axes := []struct {
		name  string
		theta float64
	}{
		{"major axis", 0},
		{"minor axis", math.Pi / 2},
	}
	series := make([]Series, 0, len(axes))
	for _, ax := range axes {
		r := o.EffectiveRadius(ax.theta)
		s := Series{Name: fmt.Sprintf("%s (r=%g)", ax.name, r), X: make([]float64, n), Y: make([]float64, n)}
		for i := range n {
			d := 1.1 * r * float64(i) / float64(n-1)
			s.X[i] = d
			s.Y[i] = o.Height(ax.theta, d)
		}
		series = append(series, s)
	}
	base := o.Base()
	return PlotSeries(
		fmt.Sprintf("Oval hill a=%g b=%g H=%g", base.Radius, o.EffectiveRadius(math.Pi/2), base.MaxHeight),
		"Distance", "Height",
		series,
		path,
	)
}

// PlotFeature plots the profile of a placed feature. Oval hills show both
// semi-axes.
func PlotFeature(f terrain.Placed, n int, path string) error {
	switch ft := f.Feature.(type) {
	case terrain.Hill:
		return PlotProfile(ft.Profile, n, path)
	case terrain.OvalHill:
		return PlotOval(ft.Oval, n, path)
	default:
		return fmt.Errorf("%w: feature %q of type %T", ErrNoData, f.Name, f.Feature)
	}
}
