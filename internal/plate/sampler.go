package plate

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BoundaryPolicy decides what happens to wells whose scan window is clipped
// by the image edge.
type BoundaryPolicy int

const (
	// BoundaryPad pads short lines with their last valid sample, clamps
	// out-of-range rows to the nearest image row, and flags the well as
	// Clipped.
	BoundaryPad BoundaryPolicy = iota

	// BoundaryReject fails the whole call with ErrBoundaryWell.
	BoundaryReject
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryPad:
		return "pad"
	case BoundaryReject:
		return "reject"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
	}
}

// ParseBoundaryPolicy parses "pad" or "reject". An empty string means pad.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "", "pad":
		return BoundaryPad, nil
	case "reject":
		return BoundaryReject, nil
	default:
		return BoundaryPad, fmt.Errorf("%w: unknown boundary policy %q", ErrInvalidScan, s)
	}
}

// Options controls line-scan sampling and profile post-processing.
type Options struct {
	// ScanWidth sets the vertical extent of the scan bundle. Lines are taken
	// at offsets floor(-ScanWidth/2) .. ScanWidth/2 inclusive, which is
	// ScanWidth+1 lines.
	ScanWidth int `json:"scan_width"`

	// ScanLength is the number of samples in each profile.
	ScanLength int `json:"scan_length"`

	// Normalize rescales each aligned profile to unit mean.
	Normalize bool `json:"normalize"`

	// Window is the minimum-search window; zero means DefaultWindow(ScanLength).
	Window SearchWindow `json:"window"`

	// Boundary selects the treatment of clipped wells.
	Boundary BoundaryPolicy `json:"-"`
}

// DefaultOptions returns the customary settings: 10-pixel scan width,
// 40-sample profiles, normalization on.
func DefaultOptions() Options {
	return Options{
		ScanWidth:  10,
		ScanLength: 40,
		Normalize:  true,
	}
}

func (o Options) validate() error {
	if o.ScanWidth < 1 {
		return fmt.Errorf("%w: scan width %d", ErrInvalidScan, o.ScanWidth)
	}
	if o.ScanLength < 1 {
		return fmt.Errorf("%w: scan length %d", ErrInvalidScan, o.ScanLength)
	}
	if _, err := o.Window.Resolve(o.ScanLength); err != nil {
		return err
	}
	return nil
}

// lineOffsets returns the vertical offsets of the scan bundle. The lower
// bound floors -ScanWidth/2, so the bundle always holds ScanWidth+1 lines.
func lineOffsets(scanWidth int) []int {
	lo := -((scanWidth + 1) / 2)
	hi := scanWidth / 2
	offsets := make([]int, 0, hi-lo+1)
	for off := lo; off <= hi; off++ {
		offsets = append(offsets, off)
	}
	return offsets
}

// ScanWindow returns the clamped horizontal extent [startX, endX] (inclusive)
// of the scan through a well center.
func ScanWindow(center WellCenter, scanLength, width int) (startX, endX int) {
	startX = center.Col - scanLength/2
	if startX < 0 {
		startX = 0
	}
	endX = center.Col + scanLength/2
	if endX > width-1 {
		endX = width - 1
	}
	return startX, endX
}

// ScanRegion returns the rectangle covered by a well's scan bundle. The
// horizontal extent is clipped to the image; the vertical extent is not.
func ScanRegion(center WellCenter, scanWidth, scanLength, width int) image.Rectangle {
	startX, endX := ScanWindow(center, scanLength, width)
	offs := lineOffsets(scanWidth)
	return image.Rect(startX, center.Row+offs[0], endX+1, center.Row+offs[len(offs)-1]+1)
}

// rasterLine returns the pixels of the straight line from (r0,c0) to
// (r1,c1), both ends included, using Bresenham's algorithm.
func rasterLine(r0, c0, r1, c1 int) []image.Point {
	dr := abs(r1 - r0)
	dc := abs(c1 - c0)
	sr, sc := 1, 1
	if r1 < r0 {
		sr = -1
	}
	if c1 < c0 {
		sc = -1
	}

	pts := make([]image.Point, 0, max(dr, dc)+1)
	err := dc - dr
	r, c := r0, c0
	for {
		pts = append(pts, image.Point{X: c, Y: r})
		if r == r1 && c == c1 {
			return pts
		}
		e2 := 2 * err
		if e2 > -dr {
			err -= dr
			c += sc
		}
		if e2 < dc {
			err += dc
			r += sr
		}
	}
}

// LineScan samples the raw averaged profile for one well center. The bool
// result reports whether the scan touched the image boundary. A NaN or
// infinite sample fails with ErrNonFinite.
func LineScan(img *Image, center WellCenter, opts Options) ([]float64, bool, error) {
	if err := img.validate(); err != nil {
		return nil, false, err
	}
	if err := opts.validate(); err != nil {
		return nil, false, err
	}

	startX, endX := ScanWindow(center, opts.ScanLength, img.Width)
	if endX < startX {
		return nil, false, fmt.Errorf("%w: center column %d outside image width %d",
			ErrBoundaryWell, center.Col, img.Width)
	}

	offsets := lineOffsets(opts.ScanWidth)
	profile := make([]float64, opts.ScanLength)
	line := make([]float64, opts.ScanLength)
	clipped := false

	for _, off := range offsets {
		row := center.Row + off
		if row < 0 || row >= img.Height {
			if opts.Boundary == BoundaryReject {
				return nil, true, fmt.Errorf("%w: row %d outside image height %d",
					ErrBoundaryWell, row, img.Height)
			}
			clipped = true
			row = clamp(row, 0, img.Height-1)
		}

		pts := rasterLine(row, startX, row, endX)
		if len(pts) < opts.ScanLength {
			if opts.Boundary == BoundaryReject {
				return nil, true, fmt.Errorf("%w: %d of %d samples at center (%d,%d)",
					ErrBoundaryWell, len(pts), opts.ScanLength, center.Row, center.Col)
			}
			clipped = true
		}

		for i := range line {
			p := pts[min(i, len(pts)-1)]
			v := img.At(p.Y, p.X)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, clipped, fmt.Errorf("%w: %v at row %d, column %d", ErrNonFinite, v, p.Y, p.X)
			}
			line[i] = v
		}
		floats.Add(profile, line)
	}

	floats.Scale(1/float64(len(offsets)), profile)
	return profile, clipped, nil
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
