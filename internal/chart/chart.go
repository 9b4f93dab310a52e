// Package chart renders clustering diagnostics as PNG images.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
)

// Default image size.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Elbow draws WCSS against the number of clusters.
func Elbow(curve []segment.ElbowPoint) (*plot.Plot, error) {
	if len(curve) == 0 {
		return nil, fmt.Errorf("elbow chart: empty curve")
	}
	p := plot.New()
	p.Title.Text = "Elbow Method"
	p.X.Label.Text = "Number of Clusters"
	p.Y.Label.Text = "WCSS"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(curve))
	ticks := make([]plot.Tick, len(curve))
	for i, pt := range curve {
		pts[i] = plotter.XY{X: float64(pt.K), Y: pt.Inertia}
		ticks[i] = plot.Tick{Value: float64(pt.K), Label: fmt.Sprint(pt.K)}
	}
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("elbow chart: %w", err)
	}
	l.Color = color.RGBA{B: 200, A: 255, R: 30, G: 90}
	l.LineStyle.Width = vg.Points(2)
	s.Shape = draw.CircleGlyph{}
	s.Color = l.Color
	p.Add(l, s)
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	return p, nil
}

// Clusters draws the 2-D projection with one color per cluster label.
func Clusters(proj *segment.Projection, labels []int, k int) (*plot.Plot, error) {
	if proj == nil || len(proj.Points) != len(labels) {
		return nil, fmt.Errorf("cluster chart: %d labels for projection", len(labels))
	}
	p := plot.New()
	p.Title.Text = "Clusters in 2D using PCA"
	p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%%)", proj.ExplainedVarianceRatio[0]*100)
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%%)", proj.ExplainedVarianceRatio[1]*100)
	p.Add(plotter.NewGrid())

	groups := make([]plotter.XYs, k)
	for i, pt := range proj.Points {
		c := labels[i]
		if c < 0 || c >= k {
			return nil, fmt.Errorf("cluster chart: label %d outside [0, %d)", c, k)
		}
		groups[c] = append(groups[c], plotter.XY{X: pt[0], Y: pt[1]})
	}
	for c, pts := range groups {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("cluster chart: %w", err)
		}
		s.Color = plotutil.Color(c)
		s.Shape = plotutil.Shape(c)
		s.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("Cluster %d", c), s)
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes p to path; the extension picks the format (png, svg, pdf).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write renders p to w in the given format.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(Width, Height, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
