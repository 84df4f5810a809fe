package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wellscan/internal/annotate"
	"github.com/ironsheep/wellscan/internal/config"
	"github.com/ironsheep/wellscan/internal/imaging"
	"github.com/ironsheep/wellscan/internal/plate"
)

// samplingFlags override the grid and scan sections of the config.
type samplingFlags struct {
	rows        int
	cols        int
	scanWidth   int
	scanLength  int
	normalize   bool
	boundary    string
	windowStart int
	windowEnd   int
	labels      []string
	labelsFile  string
}

func (f *samplingFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.rows, "rows", 0, "Grid rows (default from config)")
	fs.IntVar(&f.cols, "cols", 0, "Grid columns (default from config)")
	fs.IntVar(&f.scanWidth, "scan-width", 0, "Scan bundle width in pixels")
	fs.IntVar(&f.scanLength, "scan-length", 0, "Scan line length in pixels")
	fs.BoolVar(&f.normalize, "normalize", true, "Divide each profile by its mean")
	fs.StringVar(&f.boundary, "boundary", "", "Boundary policy: pad or reject")
	fs.IntVar(&f.windowStart, "window-start", 0, "Alignment search window start")
	fs.IntVar(&f.windowEnd, "window-end", 0, "Alignment search window end (exclusive)")
	fs.StringSliceVar(&f.labels, "labels", nil, "Comma separated labels, one per well in row-major order")
	fs.StringVar(&f.labelsFile, "labels-file", "", "File with one label per line")
	cmd.MarkFlagsMutuallyExclusive("labels", "labels-file")
}

// resolve layers the changed flags over cfg.
func (f *samplingFlags) resolve(cmd *cobra.Command, cfg *config.Config) (plate.Grid, plate.Options, error) {
	opts, err := cfg.SampleOptions()
	if err != nil {
		return plate.Grid{}, plate.Options{}, err
	}
	grid := cfg.PlateGrid()

	fs := cmd.Flags()
	if fs.Changed("rows") {
		grid.Rows = f.rows
	}
	if fs.Changed("cols") {
		grid.Cols = f.cols
	}
	if fs.Changed("scan-width") {
		opts.ScanWidth = f.scanWidth
	}
	if fs.Changed("scan-length") {
		opts.ScanLength = f.scanLength
		opts.Window = plate.SearchWindow{}
	}
	if fs.Changed("normalize") {
		opts.Normalize = f.normalize
	}
	if fs.Changed("boundary") {
		if opts.Boundary, err = plate.ParseBoundaryPolicy(f.boundary); err != nil {
			return plate.Grid{}, plate.Options{}, err
		}
	}
	if fs.Changed("window-start") || fs.Changed("window-end") {
		opts.Window = plate.SearchWindow{Start: f.windowStart, End: f.windowEnd}
	}
	return grid, opts, nil
}

// labelsFor returns the user labels, or the well IDs when none were given.
func (f *samplingFlags) labelsFor(res *plate.Result) ([]string, error) {
	labels := f.labels
	if f.labelsFile != "" {
		var err error
		if labels, err = readLabels(f.labelsFile); err != nil {
			return nil, err
		}
	}
	if len(labels) == 0 {
		ids := make([]string, len(res.Wells))
		for i, w := range res.Wells {
			ids[i] = w.ID
		}
		return ids, nil
	}
	if len(labels) != len(res.Wells) {
		return nil, fmt.Errorf("%w: %d labels for %d wells", annotate.ErrLabelMismatch, len(labels), len(res.Wells))
	}
	return labels, nil
}

// readLabels reads one label per non-blank line.
func readLabels(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer fh.Close()

	var labels []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}

// sampledPlate is a frame with its extracted profiles and labels.
type sampledPlate struct {
	frame  *imaging.Frame
	result *plate.Result
	labels []string
	log    *slog.Logger
}

func (c *commandContext) sample(cmd *cobra.Command, f *samplingFlags, path string) (*sampledPlate, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}
	grid, opts, err := f.resolve(cmd, cfg)
	if err != nil {
		return nil, err
	}

	frame, err := c.cache.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := plate.SampleWells(frame.Plate, grid, opts)
	if err != nil {
		return nil, err
	}
	if res.Overlapping() {
		log.Warn("scans of neighbouring wells overlap", "path", path, "scan_length", opts.ScanLength, "cols", grid.Cols)
	}
	if clipped := res.Clipped(); len(clipped) > 0 {
		log.Warn("boundary wells padded", "path", path, "wells", clipped)
	}

	labels, err := f.labelsFor(res)
	if err != nil {
		return nil, err
	}
	log.Debug("sampled wells", "path", path, "wells", len(res.Wells), "grid", fmt.Sprintf("%dx%d", grid.Rows, grid.Cols))
	return &sampledPlate{frame: frame, result: res, labels: labels, log: log}, nil
}
