package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/wellscan/internal/plate"
)

// ErrUnsupportedFormat is returned for files whose extension names no known
// frame format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Frame is a decoded plate image together with the source it came from.
//
// Source is nil for formats that have no image.Image rendition (FITS); use
// Plate.ToGray16 when a raster is needed.
type Frame struct {
	Plate  *plate.Image
	Source image.Image
	Format string
}

// Raster returns an image.Image view of the frame suitable for cropping and
// OCR.
func (f *Frame) Raster() image.Image {
	if f.Source != nil {
		return f.Source
	}
	return f.Plate.ToGray16()
}

// ImageCache provides thread-safe caching of decoded plate frames to avoid
// redundant disk reads.
//
// Frames are keyed by the exact path string given to Load. Cached frames
// stay in memory until Evict or Clear is called.
//
//	cache := imaging.NewImageCache()
//	frame, err := cache.Load("/data/plate_0001.tif")
//	if err != nil {
//	    return err
//	}
//	res, err := plate.SampleWells(frame.Plate, grid, opts)
type ImageCache struct {
	mu     sync.RWMutex
	frames map[string]*Frame
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		frames: make(map[string]*Frame),
	}
}

// Load returns the cached frame for path, decoding it from disk on first use.
//
// PNG, JPEG, GIF and TIFF files go through image.Decode; .fits, .fit and
// .fts files are read with the FITS decoder.
func (c *ImageCache) Load(path string) (*Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	f, err := decodeFrame(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[path] = f
	c.mu.Unlock()

	return f, nil
}

// Clear removes all frames from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.mu.Unlock()
}

// Evict removes the frame cached under path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

func decodeFrame(path string) (*Frame, error) {
	format := formatFromPath(path)
	if format == "unknown" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer fh.Close()

	if format == "fits" {
		img, err := DecodeFITS(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FITS image: %w", err)
		}
		return &Frame{Plate: img, Format: format}, nil
	}

	src, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Frame{Plate: plate.FromImage(src), Source: src, Format: format}, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".fits", ".fit", ".fts":
		return "fits"
	default:
		return "unknown"
	}
}

// FrameInfo contains metadata about a loaded plate frame.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "tiff" or "fits", detected by extension.
	Format string `json:"format"`

	// ColorDepth is "8-bit", "16-bit" or "float" for FITS data.
	ColorDepth string `json:"color_depth"`

	// MinIntensity and MaxIntensity bound the single-channel sample values.
	MinIntensity float64 `json:"min_intensity"`
	MaxIntensity float64 `json:"max_intensity"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame into the cache (if needed) and reports its
// dimensions, format, sample depth, intensity range and file size.
func LoadFrameInfo(cache *ImageCache, path string) (*FrameInfo, error) {
	f, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	depth := "8-bit"
	switch f.Source.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		depth = "16-bit"
	case nil:
		depth = "float"
	}

	lo, hi := f.Plate.Range()
	return &FrameInfo{
		Width:         f.Plate.Width,
		Height:        f.Plate.Height,
		Format:        f.Format,
		ColorDepth:    depth,
		MinIntensity:  lo,
		MaxIntensity:  hi,
		FileSizeBytes: stat.Size(),
	}, nil
}
