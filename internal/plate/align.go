package plate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SearchWindow is the half-open index range [Start, End) searched for the
// profile minimum during alignment. The zero value selects the default
// proportional window for the profile length.
type SearchWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the window is unset.
func (w SearchWindow) IsZero() bool {
	return w.Start == 0 && w.End == 0
}

// DefaultWindow returns the interior window [L/4, 3L/4) for a profile of
// length L. For the customary L=40 this is [10, 30).
func DefaultWindow(scanLength int) SearchWindow {
	w := SearchWindow{Start: scanLength / 4, End: 3 * scanLength / 4}
	if w.End <= w.Start {
		w.End = w.Start + 1
	}
	return w
}

// Resolve returns the window to use for a profile of the given length,
// substituting the default for the zero value, and checks it fits.
func (w SearchWindow) Resolve(scanLength int) (SearchWindow, error) {
	if w.IsZero() {
		w = DefaultWindow(scanLength)
	}
	if w.Start < 0 || w.End <= w.Start || w.End > scanLength {
		return w, fmt.Errorf("%w: search window [%d,%d) outside profile of length %d",
			ErrInvalidScan, w.Start, w.End, scanLength)
	}
	return w, nil
}

// Rotate circularly shifts p by shift positions: the value at index i moves
// to index (i+shift) mod len(p). Negative shifts rotate left. The input is
// not modified.
func Rotate(p []float64, shift int) []float64 {
	n := len(p)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	shift %= n
	if shift < 0 {
		shift += n
	}
	copy(out[shift:], p[:n-shift])
	copy(out[:shift], p[n-shift:])
	return out
}

// Align rotates p so that its minimum inside the search window lands at
// index scanLength/2. It returns the rotated copy, the index of the minimum
// before rotation, and the applied shift. Ties resolve to the first minimum.
func Align(p []float64, scanLength int, window SearchWindow) (aligned []float64, minIndex, shift int, err error) {
	if scanLength <= 0 || len(p) != scanLength {
		return nil, 0, 0, fmt.Errorf("%w: profile length %d, scan length %d",
			ErrInvalidScan, len(p), scanLength)
	}
	w, err := window.Resolve(scanLength)
	if err != nil {
		return nil, 0, 0, err
	}

	minIndex = w.Start + floats.MinIdx(p[w.Start:w.End])
	shift = scanLength/2 - minIndex
	return Rotate(p, shift), minIndex, shift, nil
}

// Normalize divides every value of p by the mean of p, giving a profile
// with mean 1. It fails with ErrZeroMean rather than produce infinities, and
// with ErrNonFinite when the mean is NaN or infinite.
func Normalize(p []float64) ([]float64, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty profile", ErrZeroMean)
	}
	mean := stat.Mean(p, nil)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("%w: profile mean %v", ErrNonFinite, mean)
	}
	if mean == 0 {
		return nil, ErrZeroMean
	}
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = v / mean
	}
	return out, nil
}

// AlignAndNormalize aligns p on its windowed minimum and, when normalize is
// set, rescales it to unit mean. minIndex and shift are as for Align.
func AlignAndNormalize(p []float64, scanLength int, normalize bool, window SearchWindow) (out []float64, minIndex, shift int, err error) {
	out, minIndex, shift, err = Align(p, scanLength, window)
	if err != nil || !normalize {
		return out, minIndex, shift, err
	}
	if out, err = Normalize(out); err != nil {
		return nil, minIndex, shift, err
	}
	return out, minIndex, shift, nil
}
