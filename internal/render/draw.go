// Drawing primitives for annotation overlays.

package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelFace is the bitmap font used for annotation labels.
var labelFace = basicfont.Face7x13

// fillMask blends c at fillAlpha over every pixel set in m.
func fillMask(dst *image.RGBA, m *image.Alpha, c color.RGBA) {
	src := &image.Uniform{C: color.NRGBA{R: c.R, G: c.G, B: c.B, A: fillAlpha}}
	draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, m, m.Bounds().Min, draw.Over)
}

// drawOutline draws a one pixel wide rectangle whose corners (x0, y0) and
// (x1, y1) are both inclusive.
func drawOutline(dst *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	src := &image.Uniform{C: c}
	for _, r := range []image.Rectangle{
		image.Rect(x0, y0, x1+1, y0+1),
		image.Rect(x0, y1, x1+1, y1+1),
		image.Rect(x0, y0, x0+1, y1+1),
		image.Rect(x1, y0, x1+1, y1+1),
	} {
		draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text in white with its top-left corner at (x, y).
func drawLabel(dst *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: labelFace,
		Dot:  fixed.P(x, y+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
