package plate

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// Image is a single-channel intensity frame.
//
// Pix holds Height rows of Width samples each, row-major. Values keep the
// native scale of the source (0-255 for 8-bit, 0-65535 for 16-bit frames,
// arbitrary for FITS data).
type Image struct {
	Width  int
	Height int
	Pix    []float64
}

// NewImage allocates a zero-filled image of the given size.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the intensity at pixel row y, column x.
func (m *Image) At(y, x int) float64 {
	return m.Pix[y*m.Width+x]
}

// Set stores an intensity at pixel row y, column x.
func (m *Image) Set(y, x int, v float64) {
	m.Pix[y*m.Width+x] = v
}

// Bounds returns the image rectangle with its origin at (0,0).
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Range returns the minimum and maximum finite intensity in the image. NaN
// and infinite samples are skipped; an image with none finite gives 0, 0.
func (m *Image) Range() (lo, hi float64) {
	found := false
	for _, v := range m.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !found {
			lo, hi, found = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func (m *Image) validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyImage
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrEmptyImage, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

// FromImage converts a decoded image to a single-channel Image.
//
// 8-bit and 16-bit grayscale sources keep their native sample values. Any
// other colour model is reduced to 8-bit luminance first.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())

	switch s := src.(type) {
	case *image.Gray:
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(y, x, float64(s.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(y, x, float64(s.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	default:
		// Grayscale returns RGBA with R=G=B holding the weighted luminance.
		gray := effect.Grayscale(src)
		gb := gray.Bounds()
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Set(y, x, float64(gray.RGBAAt(gb.Min.X+x, gb.Min.Y+y).R))
			}
		}
	}
	return out
}

// ToGray16 renders the image as a 16-bit grayscale image, linearly mapping
// the intensity range onto 0-65535. A flat image maps to mid-gray and NaN
// samples map to black.
func (m *Image) ToGray16() *image.Gray16 {
	out := image.NewGray16(m.Bounds())
	lo, hi := m.Range()
	span := hi - lo
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			s := m.At(y, x)
			var v uint16
			switch {
			case math.IsNaN(s):
			case span <= 0:
				v = 32768
			default:
				v = uint16(math.Max(0, math.Min(1, (s-lo)/span)) * 65535)
			}
			out.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return out
}
