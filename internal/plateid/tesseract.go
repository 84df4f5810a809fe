package plateid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/anthonynsimon/bild/effect"
	disimaging "github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/wellscan/internal/imaging"
)

// DefaultID is reported when no identifier can be read from the label.
const DefaultID = "00000"

// DefaultWhitelist restricts recognition to the characters printed on plate
// labels.
const DefaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-"

// ErrInvalidRegion is returned when the label region is empty or lies
// outside the image.
var ErrInvalidRegion = errors.New("invalid label region")

// Reader reads a plate identifier from a region of a frame.
type Reader interface {
	ReadID(img image.Image, region image.Rectangle) (string, error)
}

// Tesseract reads plate identifiers with the Tesseract OCR engine.
type Tesseract struct {
	// Language is the Tesseract language code, "eng" when empty.
	Language string

	// Whitelist limits the recognised characters; DefaultWhitelist when empty.
	Whitelist string

	// MinHeight is the crop height in pixels below which the crop is
	// upscaled before recognition. Zero disables upscaling.
	MinHeight int
}

// NewTesseract returns a reader for the given language with the default
// whitelist and a 64px minimum crop height.
func NewTesseract(language string) *Tesseract {
	return &Tesseract{Language: language, Whitelist: DefaultWhitelist, MinHeight: 64}
}

// ReadID crops region from img, runs OCR over it and returns the longest
// identifier-like token. A zero region reads the whole image. When nothing
// recognisable is found the result is DefaultID with a nil error.
func (t *Tesseract) ReadID(img image.Image, region image.Rectangle) (string, error) {
	data, err := t.prepare(img, region)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	whitelist := t.Whitelist
	if whitelist == "" {
		whitelist = DefaultWhitelist
	}
	if err := client.SetWhitelist(whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return ExtractID(text), nil
}

// prepare crops, upscales and desaturates the label and returns it as PNG.
func (t *Tesseract) prepare(img image.Image, region image.Rectangle) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidRegion)
	}
	if region == (image.Rectangle{}) {
		region = img.Bounds()
	}
	if region.Empty() || !region.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: %v not inside %v", ErrInvalidRegion, region, img.Bounds())
	}

	crop, err := imaging.CropRegion(img, region, upscaleFactor(region.Dy(), t.MinHeight))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}

	var buf bytes.Buffer
	if err := disimaging.Encode(&buf, effect.Grayscale(crop), disimaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode label: %w", err)
	}
	return buf.Bytes(), nil
}

// upscaleFactor returns the scale that brings height up to minHeight, or 1.
func upscaleFactor(height, minHeight int) float64 {
	if minHeight <= 0 || height <= 0 || height >= minHeight {
		return 1
	}
	return float64(minHeight) / float64(height)
}

// ExtractID returns the longest run of upper-case letters, digits and
// hyphens in text, or DefaultID when there is none. Earlier tokens win ties.
func ExtractID(text string) string {
	best := ""
	for _, tok := range strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return !isIDRune(r)
	}) {
		tok = strings.Trim(tok, "-")
		if len(tok) > len(best) {
			best = tok
		}
	}
	if best == "" {
		return DefaultID
	}
	return best
}

func isIDRune(r rune) bool {
	return r == '-' || (r < unicode.MaxASCII && (unicode.IsDigit(r) || unicode.IsUpper(r)))
}
