// Package mask decodes the run-length encoded masks of object and surface
// annotations into alpha bitmaps.
//
// A mask is stored as {"size": [h, w], "counts": s} where s is the base64
// encoding of a COCO compressed RLE string: run lengths of alternating 0 and 1
// pixels, starting with 0, in column-major order. Each run length is written
// as little-endian 5-bit groups offset by '0', with 0x20 as the continuation
// bit and 0x10 as the sign bit of the last group. From the third run on, the
// value is stored as the difference to the run two positions earlier.
package mask

import (
	"encoding/base64"
	"image"

	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/models"
)

// Decode expands rle into a bitmap where set pixels are fully opaque (255)
// and the others are transparent (0).
func Decode(rle *models.RLE) (*image.Alpha, error) {
	h, w := rle.Size[0], rle.Size[1]
	if h <= 0 || w <= 0 {
		return nil, dberrors.Decode(dberrors.ErrMalformedMask, "invalid mask size %dx%d", w, h)
	}
	raw, err := base64.StdEncoding.DecodeString(rle.Counts)
	if err != nil {
		return nil, dberrors.Decode(dberrors.ErrMalformedMask, "invalid mask counts").Wrap(err)
	}
	counts, err := parseCounts(raw)
	if err != nil {
		return nil, err
	}

	img := image.NewAlpha(image.Rect(0, 0, w, h))
	total := int64(h) * int64(w)
	var pos int64
	for i, c := range counts {
		if c < 0 || pos+c > total {
			return nil, dberrors.Decode(dberrors.ErrMalformedMask, "run %d overflows a %dx%d mask", i, w, h)
		}
		if i%2 == 1 {
			for p := pos; p < pos+c; p++ {
				// Column-major: consecutive positions walk down a column.
				x, y := int(p/int64(h)), int(p%int64(h))
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
		pos += c
	}
	if pos != total {
		return nil, dberrors.Decode(dberrors.ErrMalformedMask, "runs cover %d pixels, want %d", pos, total)
	}
	return img, nil
}

func parseCounts(s []byte) ([]int64, error) {
	var counts []int64
	for p := 0; p < len(s); {
		var x int64
		k := 0
		for more := true; more; k++ {
			if p >= len(s) {
				return nil, dberrors.Decode(dberrors.ErrMalformedMask, "truncated run length")
			}
			if k > 12 {
				return nil, dberrors.Decode(dberrors.ErrMalformedMask, "run length too long")
			}
			c := int64(s[p]) - 48
			if c < 0 || c > 0x3f {
				return nil, dberrors.Decode(dberrors.ErrMalformedMask, "invalid byte %q in run length", s[p])
			}
			x |= (c & 0x1f) << (5 * k)
			more = c&0x20 != 0
			p++
			if !more && c&0x10 != 0 {
				x |= int64(-1) << (5 * (k + 1))
			}
		}
		if len(counts) > 2 {
			x += counts[len(counts)-2]
		}
		counts = append(counts, x)
	}
	return counts, nil
}

// Encode is the inverse of Decode: any non-zero alpha value is a set pixel.
func Encode(img *image.Alpha) *models.RLE {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	var counts []int64
	var run int64
	cur := false
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			set := img.AlphaAt(b.Min.X+x, b.Min.Y+y).A != 0
			if set != cur {
				counts = append(counts, run)
				run = 0
				cur = set
			}
			run++
		}
	}
	counts = append(counts, run)

	var s []byte
	for i, c := range counts {
		x := c
		if i > 2 {
			x -= counts[i-2]
		}
		for more := true; more; {
			ch := x & 0x1f
			x >>= 5
			if ch&0x10 != 0 {
				more = x != -1
			} else {
				more = x != 0
			}
			if more {
				ch |= 0x20
			}
			s = append(s, byte(ch+48))
		}
	}
	return &models.RLE{
		Size:   [2]int{h, w},
		Counts: base64.StdEncoding.EncodeToString(s),
	}
}
