// Package render composites object and surface annotations onto the camera
// images of a dataset.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/nuimages/internal/dataset"
	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/mask"
	"github.com/maruel/nuimages/internal/models"
)

// fillAlpha is the opacity of mask fills.
const fillAlpha = 128

// ColorLookup resolves a category name to its drawing color.
type ColorLookup interface {
	Lookup(category string) (color.RGBA, error)
}

// Options controls RenderImage.
type Options struct {
	// WithAnnotations draws the surface and object annotations.
	WithAnnotations bool
	// WithAttributes appends attribute names to object labels.
	WithAttributes bool
	// ObjectTokens, when non-nil, restricts the object annotations drawn.
	ObjectTokens []string
	// SurfaceTokens, when non-nil, restricts the surface annotations drawn.
	SurfaceTokens []string
	// RenderScale is the display scale passed to a Surface.
	RenderScale float64
}

// DefaultOptions draws every annotation without attributes at scale 2.
func DefaultOptions() *Options {
	return &Options{WithAnnotations: true, RenderScale: 2}
}

// Renderer draws annotations from a Store.
type Renderer struct {
	store  *dataset.Store
	colors ColorLookup
}

// New returns a Renderer reading records from store and colors from colors.
func New(store *dataset.Store, colors ColorLookup) *Renderer {
	return &Renderer{store: store, colors: colors}
}

// RenderImage returns the image of a camera SampleData, with its annotations
// overlaid when requested.
//
// Surface annotations are drawn first, then object annotations on top, each
// in table order. Annotations without a mask are skipped.
func (r *Renderer) RenderImage(sampleDataToken string, opts *Options) (image.Image, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	sd, err := r.store.SampleData(sampleDataToken)
	if err != nil {
		return nil, err
	}
	if sd.FileFormat != models.FileFormatJPG {
		return nil, dberrors.Precondition(dberrors.ErrNotCamera, "cannot render %s: %s is not an image", sampleDataToken, sd.Filename)
	}
	if !sd.IsKeyFrame {
		if opts.WithAnnotations {
			return nil, dberrors.Precondition(dberrors.ErrNotKeyFrame, "cannot render annotations for non keyframe %s", sampleDataToken)
		}
		if opts.WithAttributes {
			return nil, dberrors.Precondition(dberrors.ErrNotKeyFrame, "cannot render attributes for non keyframe %s", sampleDataToken)
		}
	}

	im, err := r.loadImage(sd)
	if err != nil {
		return nil, err
	}
	if !opts.WithAnnotations {
		return im, nil
	}

	dst := image.NewRGBA(im.Bounds())
	draw.Draw(dst, dst.Bounds(), im, im.Bounds().Min, draw.Src)

	surfaces, err := r.store.SurfaceAnnsFor(sampleDataToken)
	if err != nil {
		return nil, err
	}
	surfaceOK := allowList(opts.SurfaceTokens)
	drawnSurfaces := 0
	for _, ann := range surfaces {
		if !surfaceOK(ann.Token) {
			continue
		}
		category, err := r.store.Category(ann.CategoryToken)
		if err != nil {
			return nil, err
		}
		c, err := r.colors.Lookup(category.Name)
		if err != nil {
			return nil, err
		}
		if ann.Mask == nil {
			continue
		}
		m, err := decodeMask(ann.Mask, ann.Token, dst.Bounds())
		if err != nil {
			return nil, err
		}
		fillMask(dst, m, c)
		drawnSurfaces++
	}

	objects, err := r.store.ObjectAnnsFor(sampleDataToken)
	if err != nil {
		return nil, err
	}
	objectOK := allowList(opts.ObjectTokens)
	drawnObjects := 0
	for _, ann := range objects {
		if !objectOK(ann.Token) {
			continue
		}
		category, err := r.store.Category(ann.CategoryToken)
		if err != nil {
			return nil, err
		}
		c, err := r.colors.Lookup(category.Name)
		if err != nil {
			return nil, err
		}
		attributes := make([]*models.Attribute, 0, len(ann.AttributeTokens))
		for _, token := range ann.AttributeTokens {
			a, err := r.store.Attribute(token)
			if err != nil {
				return nil, err
			}
			attributes = append(attributes, a)
		}
		name := AnnotationName(attributes, category.Name, opts.WithAttributes)
		if ann.Mask == nil {
			continue
		}
		m, err := decodeMask(ann.Mask, ann.Token, dst.Bounds())
		if err != nil {
			return nil, err
		}
		b := ann.BBox
		drawOutline(dst, b[0], b[1], b[2], b[3], c)
		drawLabel(dst, b[0], b[1], name)
		fillMask(dst, m, c)
		drawnObjects++
	}
	slog.Debug("Rendered image", "sample_data", sampleDataToken, "surfaces", drawnSurfaces, "objects", drawnObjects)
	return dst, nil
}

// AnnotationName returns the label of an object annotation: the category name,
// followed by "--" and the dot separated attribute names when withAttributes
// is set and there is at least one attribute.
func AnnotationName(attributes []*models.Attribute, categoryName string, withAttributes bool) string {
	if !withAttributes || len(attributes) == 0 {
		return categoryName
	}
	names := make([]string, len(attributes))
	for i, a := range attributes {
		names[i] = a.Name
	}
	return categoryName + "--" + strings.Join(names, ".")
}

func (r *Renderer) loadImage(sd *models.SampleData) (image.Image, error) {
	path := filepath.Join(r.store.DataRoot(), sd.Filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, dberrors.Decode(dberrors.ErrImageDecode, "failed to open image %s", sd.Filename).Wrap(err)
	}
	defer func() {
		_ = f.Close()
	}()
	im, _, err := image.Decode(f)
	if err != nil {
		return nil, dberrors.Decode(dberrors.ErrImageDecode, "failed to decode image %s", sd.Filename).Wrap(err)
	}
	return im, nil
}

func decodeMask(rle *models.RLE, token string, bounds image.Rectangle) (*image.Alpha, error) {
	m, err := mask.Decode(rle)
	if err != nil {
		var e *dberrors.Error
		if errors.As(err, &e) {
			e.WithDetail("token", token)
		}
		return nil, err
	}
	if m.Bounds().Size() != bounds.Size() {
		return nil, dberrors.Decode(dberrors.ErrMaskSizeMismatch, "mask of %s is %v, image is %v", token, m.Bounds().Size(), bounds.Size())
	}
	return m, nil
}

// allowList returns a predicate accepting every token when tokens is nil and
// only the listed tokens otherwise.
func allowList(tokens []string) func(string) bool {
	if tokens == nil {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return func(token string) bool {
		_, ok := set[token]
		return ok
	}
}
