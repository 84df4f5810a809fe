// Package imaging loads plate frames from disk for the well profiler.
//
// Supported inputs are PNG, JPEG, GIF and TIFF rasters and FITS primary
// images, the formats the plate camera tooling produces. Rasters are
// reduced to a single intensity channel: 8-bit and 16-bit grayscale keep
// their native values, colour images become 8-bit luminance. FITS samples
// are converted to float64 with BSCALE/BZERO applied.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are image.Rectangle values: Min inclusive, Max exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached frames are shared between
// callers and must be treated as read-only.
//
// # Memory
//
// Frames stay cached until Evict or Clear is called. Long-running servers
// that process many plates should evict frames once they are done with them.
package imaging
