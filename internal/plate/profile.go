package plate

import (
	"fmt"
	"image"
)

// WellProfile is the aligned intensity profile of one well.
type WellProfile struct {
	Well

	// Profile holds ScanLength aligned (and optionally normalized) values.
	Profile []float64 `json:"profile"`

	// MinIndex is where the windowed minimum sat before alignment.
	MinIndex int `json:"min_index"`

	// Shift is the circular shift that moved MinIndex to ScanLength/2.
	Shift int `json:"shift"`

	// Clipped marks boundary wells whose samples were padded or clamped.
	Clipped bool `json:"clipped"`

	// Region is the pixel rectangle the scan bundle was drawn from.
	Region image.Rectangle `json:"-"`
}

// Result is the output of SampleWells: one WellProfile per well, row-major.
type Result struct {
	Grid    Grid          `json:"grid"`
	Options Options       `json:"options"`
	Wells   []WellProfile `json:"wells"`

	colSpacing int
}

// Centers returns the well centers, index-aligned with Profiles.
func (r *Result) Centers() []WellCenter {
	out := make([]WellCenter, len(r.Wells))
	for i, w := range r.Wells {
		out[i] = w.Center
	}
	return out
}

// Profiles returns the intensity profiles, index-aligned with Centers.
func (r *Result) Profiles() [][]float64 {
	out := make([][]float64, len(r.Wells))
	for i, w := range r.Wells {
		out[i] = w.Profile
	}
	return out
}

// Lookup returns the profile of the well with the given identifier.
func (r *Result) Lookup(id string) (WellProfile, bool) {
	for _, w := range r.Wells {
		if w.ID == id {
			return w, true
		}
	}
	return WellProfile{}, false
}

// Clipped returns the identifiers of wells flagged as boundary wells.
func (r *Result) Clipped() []string {
	var ids []string
	for _, w := range r.Wells {
		if w.Clipped {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// Overlapping reports whether neighbouring wells' scans overlap because the
// scan length exceeds the column spacing.
func (r *Result) Overlapping() bool {
	return r.Options.ScanLength > r.colSpacing
}

// SampleWells extracts one aligned intensity profile per well of grid.
//
// For each well, ScanWidth+1 horizontal line scans of ScanLength samples
// through the well center are averaged, the result is rotated so that its
// minimum within the search window sits at index ScanLength/2, and, if
// requested, it is divided by its mean.
//
// The grid and scan parameters are validated before any sampling. The image
// is never modified.
func SampleWells(img *Image, grid Grid, opts Options) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	_, colSpacing, err := grid.Spacing(img.Height, img.Width)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	wells, err := grid.Wells(img.Height, img.Width)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Grid:       grid,
		Options:    opts,
		Wells:      make([]WellProfile, 0, len(wells)),
		colSpacing: colSpacing,
	}

	for _, w := range wells {
		raw, clipped, err := LineScan(img, w.Center, opts)
		if err != nil {
			return nil, fmt.Errorf("well %s: %w", w.ID, err)
		}

		aligned, minIdx, shift, err := AlignAndNormalize(raw, opts.ScanLength, opts.Normalize, opts.Window)
		if err != nil {
			return nil, fmt.Errorf("well %s: %w", w.ID, err)
		}

		res.Wells = append(res.Wells, WellProfile{
			Well:     w,
			Profile:  aligned,
			MinIndex: minIdx,
			Shift:    shift,
			Clipped:  clipped,
			Region:   ScanRegion(w.Center, opts.ScanWidth, opts.ScanLength, img.Width),
		})
	}
	return res, nil
}
