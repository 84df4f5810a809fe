package plate

import (
	"fmt"
	"math"
	"strconv"
)

// Grid is the logical row/column layout of a plate, e.g. 8x12 for 96 wells.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// WellCenter is the pixel sampling center of one well, in (row, column) order.
type WellCenter struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Well ties a grid position to its plate identifier and pixel center.
type Well struct {
	ID      string     `json:"id"`
	GridRow int        `json:"grid_row"`
	GridCol int        `json:"grid_col"`
	Center  WellCenter `json:"center"`
}

// Count returns the number of wells in the grid.
func (g Grid) Count() int {
	return g.Rows * g.Cols
}

// Spacing returns the per-well cell size for an image of the given height
// and width, using integer division.
func (g Grid) Spacing(height, width int) (rowSpacing, colSpacing int, err error) {
	if g.Rows <= 0 || g.Cols <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.Rows, g.Cols)
	}
	rowSpacing = height / g.Rows
	colSpacing = width / g.Cols
	if rowSpacing == 0 || colSpacing == 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d grid does not fit a %dx%d image",
			ErrInvalidGrid, g.Rows, g.Cols, height, width)
	}
	return rowSpacing, colSpacing, nil
}

// Centers returns the midpoint of every grid cell in row-major order.
//
// For cell (r, c) the center is (floor((r+0.5)*rowSpacing), floor((c+0.5)*colSpacing)).
func (g Grid) Centers(height, width int) ([]WellCenter, error) {
	wells, err := g.Wells(height, width)
	if err != nil {
		return nil, err
	}
	centers := make([]WellCenter, len(wells))
	for i, w := range wells {
		centers[i] = w.Center
	}
	return centers, nil
}

// Wells returns every well of the grid, row-major, with its identifier and
// pixel center.
func (g Grid) Wells(height, width int) ([]Well, error) {
	rowSpacing, colSpacing, err := g.Spacing(height, width)
	if err != nil {
		return nil, err
	}

	wells := make([]Well, 0, g.Count())
	for r := 0; r < g.Rows; r++ {
		cy := int(math.Floor((float64(r) + 0.5) * float64(rowSpacing)))
		for c := 0; c < g.Cols; c++ {
			cx := int(math.Floor((float64(c) + 0.5) * float64(colSpacing)))
			wells = append(wells, Well{
				ID:      WellID(r, c),
				GridRow: r,
				GridCol: c,
				Center:  WellCenter{Row: cy, Col: cx},
			})
		}
	}
	return wells, nil
}

// WellID returns the plate identifier for a grid position: rows are lettered
// (A..Z, then AA, AB, ...) and columns are numbered from 1.
func WellID(row, col int) string {
	return rowLetters(row) + strconv.Itoa(col+1)
}

func rowLetters(row int) string {
	var buf []byte
	for n := row + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}
