package diag

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/squiggle-data/pore.train/internal/model"
)

// PlotModelLevels renders the fitted level mean of every usable k-mer
// against its rank and saves the scatter to path (format by extension,
// e.g. .png or .svg).
func PlotModelLevels(m *model.PoreModel, usable []bool, path string) error {
	pts := make(plotter.XYs, 0, len(m.States))
	for ki, s := range m.States {
		if ki < len(usable) && !usable[ki] {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(ki), Y: s.LevelMean})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no usable k-mers to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("fitted %d-mer levels", m.K)
	p.X.Label.Text = "k-mer rank"
	p.Y.Label.Text = "level mean (pA)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
