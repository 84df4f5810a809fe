package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/wellscan/internal/plate"
)

// ErrLabelMismatch is returned when the number of labels differs from the
// number of wells.
var ErrLabelMismatch = errors.New("labels and wells differ in length")

const (
	colorbarGap   = 10
	colorbarWidth = 16
	tickGap       = 4
)

var labelFace = basicfont.Face7x13

// Annotate renders img through the style's colormap and draws, for every
// well, a scanLength x scanWidth outline centered on the well and its label
// LabelOffset pixels above the center.
//
// labels must be index-aligned with centers; a length mismatch fails before
// anything is drawn. The source image is not modified.
func Annotate(img *plate.Image, centers []plate.WellCenter, labels []string, scanWidth, scanLength int, style Style) (*image.RGBA, error) {
	if len(labels) != len(centers) {
		return nil, fmt.Errorf("%w: %d labels for %d wells", ErrLabelMismatch, len(labels), len(centers))
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, plate.ErrEmptyImage
	}
	if scanWidth < 1 || scanLength < 1 {
		return nil, fmt.Errorf("%w: scan %dx%d", plate.ErrInvalidScan, scanLength, scanWidth)
	}
	rs, err := style.resolve()
	if err != nil {
		return nil, err
	}

	lo, hi := img.Range()
	canvas := clone.AsRGBA(renderIntensity(img, lo, hi, rs))

	for i, c := range centers {
		x0 := c.Col - scanLength/2
		y0 := c.Row - scanWidth/2
		drawOutline(canvas, image.Rect(x0, y0, x0+scanLength, y0+scanWidth), rs.edge, rs.width)
		drawCenteredLabel(canvas, c.Col, c.Row-rs.offset, labels[i], rs)
	}

	if !rs.colorbar {
		return canvas, nil
	}
	return withColorbar(canvas, lo, hi, rs), nil
}

// renderIntensity maps the image's [lo, hi] range onto the colormap.
func renderIntensity(img *plate.Image, lo, hi float64, rs *resolvedStyle) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	span := hi - lo
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			idx := 0
			if v := img.At(y, x); span > 0 && !math.IsNaN(v) {
				idx = int(math.Max(-1, math.Min(256, (v-lo)/span*255)))
			}
			out.SetNRGBA(x, y, rs.colormap[clampIndex(idx)])
		}
	}
	return out
}

// drawOutline strokes the border of r, growing inwards for widths above 1.
// Pixels outside dst are skipped.
func drawOutline(dst *image.RGBA, r image.Rectangle, c color.NRGBA, width int) {
	for t := 0; t < width; t++ {
		in := r.Inset(t)
		if in.Empty() {
			return
		}
		for x := in.Min.X; x <= in.Max.X; x++ {
			blend(dst, x, in.Min.Y, c)
			blend(dst, x, in.Max.Y, c)
		}
		for y := in.Min.Y + 1; y < in.Max.Y; y++ {
			blend(dst, in.Min.X, y, c)
			blend(dst, in.Max.X, y, c)
		}
	}
}

func blend(dst *image.RGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
		return
	}
	if c.A == 255 {
		dst.Set(x, y, c)
		return
	}
	draw.Draw(dst, image.Rect(x, y, x+1, y+1), image.NewUniform(c), image.Point{}, draw.Over)
}

// drawCenteredLabel draws text horizontally and vertically centered on (cx, cy).
func drawCenteredLabel(dst *image.RGBA, cx, cy int, text string, rs *resolvedStyle) {
	if text == "" {
		return
	}
	m := labelFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	width := font.MeasureString(labelFace, text).Ceil()

	left := cx - width/2
	top := cy - (ascent+descent)/2
	if rs.labelBG != nil {
		box := image.Rect(left-2, top-1, left+width+2, top+ascent+descent+1)
		draw.Draw(dst, box, image.NewUniform(*rs.labelBG), image.Point{}, draw.Over)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(rs.text),
		Face: labelFace,
		Dot:  fixed.P(left, top+ascent),
	}
	d.DrawString(text)
}

// withColorbar returns a wider canvas with a vertical colour bar to the
// right of the image and its range printed beside the bar ends.
func withColorbar(canvas *image.RGBA, lo, hi float64, rs *resolvedStyle) *image.RGBA {
	b := canvas.Bounds()
	hiText := formatTick(hi)
	loText := formatTick(lo)
	textW := max(font.MeasureString(labelFace, hiText).Ceil(), font.MeasureString(labelFace, loText).Ceil())

	fig := image.NewRGBA(image.Rect(0, 0, b.Dx()+colorbarGap+colorbarWidth+tickGap+textW+tickGap, b.Dy()))
	draw.Draw(fig, fig.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(fig, image.Rect(0, 0, b.Dx(), b.Dy()), canvas, b.Min, draw.Src)

	barX := b.Dx() + colorbarGap
	for y := 0; y < b.Dy(); y++ {
		idx := 255
		if b.Dy() > 1 {
			idx = 255 - y*255/(b.Dy()-1)
		}
		c := rs.colormap[clampIndex(idx)]
		for x := barX; x < barX+colorbarWidth; x++ {
			fig.Set(x, y, c)
		}
	}

	ascent := labelFace.Metrics().Ascent.Ceil()
	textX := barX + colorbarWidth + tickGap
	drawText(fig, textX, ascent, hiText, rs.text)
	drawText(fig, textX, b.Dy()-2, loText, rs.text)
	return fig
}

func drawText(dst *image.RGBA, x, baseline int, text string, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return i
}
