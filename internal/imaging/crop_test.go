package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createPatternImage creates a four-quadrant pattern: red top-left, green
// top-right, blue bottom-left, white bottom-right.
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	got, err := CropRegion(img, image.Rect(50, 0, 100, 50), 1.0)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if got.Bounds().Dx() != 50 || got.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", got.Bounds().Dx(), got.Bounds().Dy())
	}

	r, g, b, _ := got.At(10, 10).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("top-right quadrant colour: got (%d,%d,%d), want green", r>>8, g>>8, b>>8)
	}
}

func TestCropRegion_Scale(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name  string
		scale float64
		want  int
	}{
		{"native", 0, 40},
		{"up", 2.0, 80},
		{"down", 0.5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRegion(img, image.Rect(0, 0, 40, 40), tt.scale)
			if err != nil {
				t.Fatalf("CropRegion failed: %v", err)
			}
			if got.Bounds().Dx() != tt.want || got.Bounds().Dy() != tt.want {
				t.Errorf("dimensions: got %dx%d, want %dx%d", got.Bounds().Dx(), got.Bounds().Dy(), tt.want, tt.want)
			}
		})
	}
}

func TestCropRegion_Invalid(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name   string
		region image.Rectangle
		scale  float64
	}{
		{"empty", image.Rect(10, 10, 10, 20), 1},
		{"outside", image.Rect(50, 50, 150, 150), 1},
		{"negative origin", image.Rect(-5, 0, 10, 10), 1},
		{"collapsing scale", image.Rect(0, 0, 4, 4), 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.region, tt.scale); err == nil {
				t.Error("expected error")
			}
		})
	}
}
