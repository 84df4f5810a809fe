package annotate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Style controls how scan regions and labels are drawn.
//
// Colours are hex strings, "#RRGGBB" or "#RRGGBBAA". An empty
// LabelBackground draws labels without a backing box.
type Style struct {
	EdgeColor       string `json:"edge_color"`
	TextColor       string `json:"text_color"`
	LabelBackground string `json:"label_background,omitempty"`
	LineWidth       int    `json:"line_width"`
	LabelOffset     int    `json:"label_offset"`

	// LowColor and HighColor are the ends of the intensity colormap.
	LowColor  string `json:"low_color"`
	HighColor string `json:"high_color"`

	Colorbar bool `json:"colorbar"`
}

// DefaultStyle returns white 1px outlines and white labels 15px above each
// well over a black-to-white intensity map with a colour bar.
func DefaultStyle() Style {
	return Style{
		EdgeColor:   "#FFFFFF",
		TextColor:   "#FFFFFF",
		LineWidth:   1,
		LabelOffset: 15,
		LowColor:    "#000000",
		HighColor:   "#FFFFFF",
		Colorbar:    true,
	}
}

// Validate reports whether every colour in the style parses.
func (s Style) Validate() error {
	_, err := s.resolve()
	return err
}

type resolvedStyle struct {
	edge     color.NRGBA
	text     color.NRGBA
	labelBG  *color.NRGBA
	width    int
	offset   int
	colormap [256]color.NRGBA
	colorbar bool
}

func (s Style) resolve() (*resolvedStyle, error) {
	edge, err := ParseHexColor(s.EdgeColor)
	if err != nil {
		return nil, fmt.Errorf("edge color: %w", err)
	}
	text, err := ParseHexColor(s.TextColor)
	if err != nil {
		return nil, fmt.Errorf("text color: %w", err)
	}
	low, err := colorful.Hex(orDefault(s.LowColor, "#000000"))
	if err != nil {
		return nil, fmt.Errorf("low color: %w", err)
	}
	high, err := colorful.Hex(orDefault(s.HighColor, "#FFFFFF"))
	if err != nil {
		return nil, fmt.Errorf("high color: %w", err)
	}

	rs := &resolvedStyle{
		edge:     edge,
		text:     text,
		width:    s.LineWidth,
		offset:   s.LabelOffset,
		colorbar: s.Colorbar,
	}
	if rs.width < 1 {
		rs.width = 1
	}
	if s.LabelBackground != "" {
		bg, err := ParseHexColor(s.LabelBackground)
		if err != nil {
			return nil, fmt.Errorf("label background: %w", err)
		}
		rs.labelBG = &bg
	}

	for i := range rs.colormap {
		c := low.BlendLab(high, float64(i)/255).Clamped()
		r, g, b := c.RGB255()
		rs.colormap[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return rs, nil
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (leading '#' optional).
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
