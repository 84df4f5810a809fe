package plate

import "errors"

var (
	// ErrInvalidGrid is returned for non-positive grid dimensions or when the
	// image is too small to give every well a non-zero cell.
	ErrInvalidGrid = errors.New("invalid grid")

	// ErrInvalidScan is returned for non-positive scan parameters or a
	// minimum-search window outside the profile.
	ErrInvalidScan = errors.New("invalid scan parameters")

	// ErrZeroMean is returned when normalization would divide by a zero
	// profile mean.
	ErrZeroMean = errors.New("profile mean is zero")

	// ErrNonFinite is returned when a sample or profile mean is NaN or
	// infinite, as with blank pixels in FITS frames.
	ErrNonFinite = errors.New("non-finite intensity")

	// ErrBoundaryWell is returned under BoundaryReject when a well's scan
	// window is clipped by the image edge.
	ErrBoundaryWell = errors.New("scan window clipped by image boundary")

	// ErrEmptyImage is returned when the image has no pixels or its pixel
	// buffer doesn't match its dimensions.
	ErrEmptyImage = errors.New("empty image")
)
