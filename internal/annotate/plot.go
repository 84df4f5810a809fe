package annotate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/wellscan/internal/plate"
)

// PlotOptions controls the profile chart.
type PlotOptions struct {
	Title string `json:"title,omitempty"`

	// Width and Height are in inches; zero selects 8x4.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Legend lists one entry per well. Plates with many wells are easier
	// to read without it.
	Legend bool `json:"legend,omitempty"`
}

var plotFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".svg":  "svg",
	".pdf":  "pdf",
	".eps":  "eps",
	".tif":  "tif",
	".tiff": "tif",
}

// PlotProfiles draws every well's aligned profile as a line over scan
// position and writes the chart to path. labels, when non-nil, must be
// index-aligned with res.Wells; nil labels fall back to well IDs.
func PlotProfiles(res *plate.Result, labels []string, path string, opts PlotOptions) error {
	if res == nil {
		return fmt.Errorf("no profiles to plot")
	}
	if labels != nil && len(labels) != len(res.Wells) {
		return fmt.Errorf("%w: %d labels for %d wells", ErrLabelMismatch, len(labels), len(res.Wells))
	}
	format, ok := plotFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("unsupported plot format: %q", filepath.Ext(path))
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Position (px)"
	p.Y.Label.Text = "Intensity"
	if res.Options.Normalize {
		p.Y.Label.Text = "Intensity / mean"
	}
	p.Legend.Top = true

	for i, w := range res.Wells {
		xys := make(plotter.XYs, len(w.Profile))
		for j, v := range w.Profile {
			xys[j].X = float64(j)
			xys[j].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("well %s: %w", w.ID, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)

		if opts.Legend {
			name := w.ID
			if labels != nil {
				name = labels[i]
			}
			p.Legend.Add(name, line)
		}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 8
	}
	if height <= 0 {
		height = 4
	}
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}
