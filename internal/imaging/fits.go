package imaging

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"

	"github.com/ironsheep/wellscan/internal/plate"
)

// DecodeFITS reads the first image HDU of a FITS stream as a plate image.
//
// Samples are converted to float64 and BSCALE/BZERO are applied. Data cubes
// contribute only their first frame. Rows are kept in file order.
func DecodeFITS(r io.Reader) (*plate.Image, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, hdu := range f.HDUs() {
		img, ok := hdu.(fitsio.Image)
		if !ok {
			continue
		}
		axes := img.Header().Axes()
		if len(axes) < 2 || axes[0] <= 0 || axes[1] <= 0 {
			continue
		}
		return fitsToPlate(img, axes[0], axes[1])
	}
	return nil, fmt.Errorf("no 2-D image HDU found")
}

func fitsToPlate(img fitsio.Image, width, height int) (*plate.Image, error) {
	hdr := img.Header()
	n := width * height

	// Read fills every element of the HDU, including later cube planes.
	nelmts := 1
	for _, dim := range hdr.Axes() {
		nelmts *= dim
	}

	var (
		raw []float64
		err error
	)
	switch bitpix := hdr.Bitpix(); bitpix {
	case 8:
		raw, err = readPlane[uint8](img, nelmts, n)
	case 16:
		raw, err = readPlane[int16](img, nelmts, n)
	case 32:
		raw, err = readPlane[int32](img, nelmts, n)
	case 64:
		raw, err = readPlane[int64](img, nelmts, n)
	case -32:
		raw, err = readPlane[float32](img, nelmts, n)
	case -64:
		raw, err = readPlane[float64](img, nelmts, n)
	default:
		return nil, fmt.Errorf("%w: BITPIX %d", ErrUnsupportedFormat, bitpix)
	}
	if err != nil {
		return nil, err
	}

	scale := cardFloat(hdr, "BSCALE", 1)
	zero := cardFloat(hdr, "BZERO", 0)
	out := plate.NewImage(width, height)
	for i, v := range raw {
		out.Pix[i] = v*scale + zero
	}
	return out, nil
}

// readPlane reads all nelmts samples and returns the first n as float64.
// fitsio resizes the slice in place, so it must be allocated up front.
func readPlane[T number](img fitsio.Image, nelmts, n int) ([]float64, error) {
	data := make([]T, nelmts)
	if err := img.Read(&data); err != nil {
		return nil, err
	}
	return widen(data[:n]), nil
}

type number interface {
	~uint8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

func widen[T number](src []T) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

func cardFloat(hdr *fitsio.Header, name string, def float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return def
	}
	switch v := card.Value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}
