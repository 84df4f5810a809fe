// Package plate extracts comparable per-well intensity profiles from a still
// image of a multi-well plate.
//
// A plate image is divided into a logical grid of wells. Each well is sampled
// with a bundle of parallel horizontal line scans through its grid-cell
// center; the scans are averaged into one raw profile, the profile is rotated
// so that its intensity minimum (the well-wall shadow or meniscus dip) sits
// at the middle index, and it is optionally rescaled to unit mean.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner.
// WellCenter uses (Row, Col) order, i.e. (y, x).
//
// # Ordering
//
// Every slice returned by this package is row-major: all columns of grid row
// 0, then row 1, and so on. Well (r, c) lives at flat index r*Cols+c. Result
// also offers keyed access by plate identifier ("A1", "B7", ...) so callers
// don't have to keep parallel label slices in step by hand.
//
// # Thread Safety
//
// Functions are pure: they never mutate their inputs and hold no package
// state, so different images may be processed concurrently.
package plate
