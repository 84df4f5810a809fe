// Package config loads wellscan settings from defaults, an optional YAML
// file and WELLSCAN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/wellscan/internal/annotate"
	"github.com/ironsheep/wellscan/internal/plate"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "wellscan.yml"

// EnvPrefix marks environment overrides; WELLSCAN_SCAN_WIDTH sets scan.width.
const EnvPrefix = "WELLSCAN_"

// Config is the full wellscan configuration.
type Config struct {
	Grid     Grid     `koanf:"grid" yaml:"grid"`
	Scan     Scan     `koanf:"scan" yaml:"scan"`
	Annotate Annotate `koanf:"annotate" yaml:"annotate"`
	PlateID  PlateID  `koanf:"plateid" yaml:"plateid"`
	Log      Log      `koanf:"log" yaml:"log"`
	HTTP     HTTP     `koanf:"http" yaml:"http"`
}

// Grid is the well layout of the plate.
type Grid struct {
	Rows int `koanf:"rows" yaml:"rows"`
	Cols int `koanf:"cols" yaml:"cols"`
}

// Scan holds line-scan sampling parameters.
type Scan struct {
	Width     int    `koanf:"width" yaml:"width"`
	Length    int    `koanf:"length" yaml:"length"`
	Normalize bool   `koanf:"normalize" yaml:"normalize"`
	Boundary  string `koanf:"boundary" yaml:"boundary"`

	// Window is the alignment search window; zero selects the middle half
	// of the scan.
	Window Window `koanf:"window" yaml:"window"`
}

// Window is a half-open index range [Start, End).
type Window struct {
	Start int `koanf:"start" yaml:"start"`
	End   int `koanf:"end" yaml:"end"`
}

// Annotate holds figure style settings.
type Annotate struct {
	Edge        string `koanf:"edge" yaml:"edge"`
	Text        string `koanf:"text" yaml:"text"`
	Background  string `koanf:"background" yaml:"background"`
	LineWidth   int    `koanf:"linewidth" yaml:"linewidth"`
	LabelOffset int    `koanf:"labeloffset" yaml:"labeloffset"`
	Low         string `koanf:"low" yaml:"low"`
	High        string `koanf:"high" yaml:"high"`
	Colorbar    bool   `koanf:"colorbar" yaml:"colorbar"`
}

// PlateID configures the label reader.
type PlateID struct {
	Language  string `koanf:"language" yaml:"language"`
	MinHeight int    `koanf:"minheight" yaml:"minheight"`
	Region    Region `koanf:"region" yaml:"region"`
}

// Region is a label rectangle in pixel coordinates; all zero means the
// whole frame.
type Region struct {
	X0 int `koanf:"x0" yaml:"x0"`
	Y0 int `koanf:"y0" yaml:"y0"`
	X1 int `koanf:"x1" yaml:"x1"`
	Y1 int `koanf:"y1" yaml:"y1"`
}

// Log configures the slog logger.
type Log struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// HTTP configures the HTTP transport.
type HTTP struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// Default returns the built-in configuration for a 96-well plate.
func Default() *Config {
	opts := plate.DefaultOptions()
	style := annotate.DefaultStyle()
	return &Config{
		Grid: Grid{Rows: 8, Cols: 12},
		Scan: Scan{
			Width:     opts.ScanWidth,
			Length:    opts.ScanLength,
			Normalize: opts.Normalize,
			Boundary:  opts.Boundary.String(),
		},
		Annotate: Annotate{
			Edge:        style.EdgeColor,
			Text:        style.TextColor,
			LineWidth:   style.LineWidth,
			LabelOffset: style.LabelOffset,
			Low:         style.LowColor,
			High:        style.HighColor,
			Colorbar:    style.Colorbar,
		},
		PlateID: PlateID{Language: "eng", MinHeight: 64},
		Log:     Log{Level: "info", Format: "console"},
		HTTP:    HTTP{Addr: ":8000"},
	}
}

// Load layers the defaults, the YAML file at path and the environment.
// An empty path reads DefaultFile. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps WELLSCAN_SCAN_WINDOW_START to scan.window.start.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return fmt.Errorf("grid: rows and cols must be positive, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	if _, err := c.SampleOptions(); err != nil {
		return err
	}
	if err := c.Style().Validate(); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	if c.PlateID.MinHeight < 0 {
		return fmt.Errorf("plateid: minheight must not be negative, got %d", c.PlateID.MinHeight)
	}
	if r := c.LabelRegion(); r != (image.Rectangle{}) && r.Empty() {
		return fmt.Errorf("plateid: region %v is empty", r)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unsupported level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log: unsupported format %q", c.Log.Format)
	}
	return nil
}

// PlateGrid returns the configured well layout.
func (c *Config) PlateGrid() plate.Grid {
	return plate.Grid{Rows: c.Grid.Rows, Cols: c.Grid.Cols}
}

// SampleOptions converts the scan section into sampler options.
func (c *Config) SampleOptions() (plate.Options, error) {
	boundary, err := plate.ParseBoundaryPolicy(c.Scan.Boundary)
	if err != nil {
		return plate.Options{}, fmt.Errorf("scan: %w", err)
	}
	opts := plate.Options{
		ScanWidth:  c.Scan.Width,
		ScanLength: c.Scan.Length,
		Normalize:  c.Scan.Normalize,
		Window:     plate.SearchWindow{Start: c.Scan.Window.Start, End: c.Scan.Window.End},
		Boundary:   boundary,
	}
	if opts.ScanWidth < 1 || opts.ScanLength < 1 {
		return plate.Options{}, fmt.Errorf("scan: width and length must be positive, got %d and %d", opts.ScanWidth, opts.ScanLength)
	}
	if _, err := opts.Window.Resolve(opts.ScanLength); err != nil {
		return plate.Options{}, fmt.Errorf("scan: %w", err)
	}
	return opts, nil
}

// Style converts the annotate section into a figure style.
func (c *Config) Style() annotate.Style {
	return annotate.Style{
		EdgeColor:       c.Annotate.Edge,
		TextColor:       c.Annotate.Text,
		LabelBackground: c.Annotate.Background,
		LineWidth:       c.Annotate.LineWidth,
		LabelOffset:     c.Annotate.LabelOffset,
		LowColor:        c.Annotate.Low,
		HighColor:       c.Annotate.High,
		Colorbar:        c.Annotate.Colorbar,
	}
}

// LabelRegion returns the configured plate label rectangle.
func (c *Config) LabelRegion() image.Rectangle {
	r := c.PlateID.Region
	return image.Rectangle{Min: image.Pt(r.X0, r.Y0), Max: image.Pt(r.X1, r.Y1)}
}
