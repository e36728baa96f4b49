package render

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"energy_report/internal/report"
)

var (
	steelBlue = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	meanRed   = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
	heatLevels  = 12
)

// ChartWriter draws report charts as PNG files.
type ChartWriter struct {
	Location *time.Location
}

// Write renders c to path.
func (cw ChartWriter) Write(c report.Chart, path string) error {
	p, err := cw.build(c)
	if err != nil {
		return fmt.Errorf("building chart %s: %w", c.Name, err)
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("encoding chart %s: %w", c.Name, err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

func (cw ChartWriter) build(c report.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case report.ChartLine:
		err = cw.line(p, c)
	case report.ChartBar:
		err = bar(p, c)
	case report.ChartHistogram:
		err = histogram(p, c)
	case report.ChartHeatmap:
		err = heatmap(p, c)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (cw ChartWriter) line(p *plot.Plot, c report.Chart) error {
	if len(c.Times) != len(c.Values) {
		return fmt.Errorf("%d times for %d values", len(c.Times), len(c.Values))
	}
	pts := make(plotter.XYs, len(c.Values))
	for i := range c.Values {
		pts[i].X = float64(c.Times[i].Unix())
		pts[i].Y = c.Values[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = steelBlue
	l.Width = vg.Points(1.5)

	loc := cw.Location
	if loc == nil {
		loc = time.UTC
	}
	format := "15:04"
	if len(c.Times) > 1 && c.Times[len(c.Times)-1].Sub(c.Times[0]) > 24*time.Hour {
		format = "01/02 15:04"
	}
	p.X.Tick.Marker = plot.TimeTicks{
		Format: format,
		Time: func(t float64) time.Time {
			return time.Unix(int64(t), 0).In(loc)
		},
	}
	p.Add(plotter.NewGrid(), l)
	return nil
}

func bar(p *plot.Plot, c report.Chart) error {
	bars, err := plotter.NewBarChart(plotter.Values(c.Values), vg.Points(14))
	if err != nil {
		return err
	}
	bars.Color = steelBlue
	bars.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), bars)
	if len(c.Labels) == len(c.Values) {
		p.NominalX(c.Labels...)
	}
	return nil
}

func histogram(p *plot.Plot, c report.Chart) error {
	bins := c.Bins
	if bins <= 0 {
		bins = 30
	}
	h, err := plotter.NewHist(plotter.Values(c.Values), bins)
	if err != nil {
		return err
	}
	h.FillColor = steelBlue
	p.Add(plotter.NewGrid(), h)

	if c.ShowMean {
		var top float64
		for _, b := range h.Bins {
			top = max(top, b.Weight)
		}
		mean := stat.Mean(c.Values, nil)
		l, err := plotter.NewLine(plotter.XYs{{X: mean, Y: 0}, {X: mean, Y: top}})
		if err != nil {
			return err
		}
		l.Color = meanRed
		l.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("Mean: %.1f W", mean), l)
	}
	return nil
}

// gridXYZ adapts a report.Grid to plotter.GridXYZ; columns and rows are
// placed at integer coordinates.
type gridXYZ struct {
	g *report.Grid
}

func (g gridXYZ) Dims() (c, r int)   { return len(g.g.Columns), len(g.g.Rows) }
func (g gridXYZ) Z(c, r int) float64 { return g.g.Cells[r][c] }
func (g gridXYZ) X(c int) float64    { return float64(c) }
func (g gridXYZ) Y(r int) float64    { return float64(r) }

func heatmap(p *plot.Plot, c report.Chart) error {
	if c.Grid == nil || len(c.Grid.Columns) == 0 || len(c.Grid.Rows) == 0 {
		return fmt.Errorf("empty heatmap grid")
	}
	hm := plotter.NewHeatMap(gridXYZ{c.Grid}, palette.Heat(heatLevels, 1))
	p.Add(hm)

	xticks := make([]plot.Tick, len(c.Grid.Columns))
	for i, label := range c.Grid.Columns {
		xticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	var yticks []plot.Tick
	for i, label := range c.Grid.Rows {
		if i%3 == 0 {
			yticks = append(yticks, plot.Tick{Value: float64(i), Label: label})
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	return nil
}
