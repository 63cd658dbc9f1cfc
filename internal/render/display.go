package render

import (
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Base figure size in inches, multiplied by the render scale.
const (
	figureWidth  = 9
	figureHeight = 16
)

// Surface presents a rendered image.
type Surface interface {
	Show(img image.Image, title string, scale float64) error
}

// PlotSurface saves the image as a titled figure without axes. The output
// format is derived from the extension of Path.
type PlotSurface struct {
	Path string
}

// Show implements Surface.
func (p *PlotSurface) Show(img image.Image, title string, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	b := img.Bounds()
	pl := plot.New()
	pl.Title.Text = title
	pl.Add(plotter.NewImage(img, 0, 0, float64(b.Dx()), float64(b.Dy())))
	pl.HideAxes()
	w := vg.Length(figureWidth*scale) * vg.Inch
	h := vg.Length(figureHeight*scale) * vg.Inch
	return pl.Save(w, h, p.Path)
}

// Display shows img on s. A nil Surface saves the figure as title.png in the
// current directory.
func Display(s Surface, title string, img image.Image, scale float64) error {
	if s == nil {
		s = &PlotSurface{Path: title + ".png"}
	}
	return s.Show(img, title, scale)
}
