package mask

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/models"
)

func TestDecode(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		// "0T3": runs [0, 100].
		img, err := Decode(&models.RLE{Size: [2]int{10, 10}, Counts: "MFQz"})
		if err != nil {
			t.Fatal(err)
		}
		if got := img.Bounds(); got != image.Rect(0, 0, 10, 10) {
			t.Fatalf("Bounds() = %v", got)
		}
		for i, a := range img.Pix {
			if a != 0xff {
				t.Fatalf("Pix[%d] = %d, want 255", i, a)
			}
		}
	})

	t.Run("column major", func(t *testing.T) {
		// 2 rows x 3 columns, only the middle column set: runs [2, 2, 2].
		img := image.NewAlpha(image.Rect(0, 0, 3, 2))
		img.Pix[1] = 0xff
		img.Pix[img.Stride+1] = 0xff
		rle := Encode(img)
		if rle.Size != [2]int{2, 3} {
			t.Errorf("Size = %v, want [2 3]", rle.Size)
		}
		got, err := Decode(rle)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		r := rand.New(rand.NewPCG(1, 2))
		for _, size := range []image.Point{{1, 1}, {7, 3}, {64, 48}, {200, 5}} {
			img := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
			// Long and short runs so that stored deltas go negative.
			on := false
			for i := range img.Pix {
				if r.IntN(40) == 0 || (on && r.IntN(3) == 0) {
					on = !on
				}
				if on {
					img.Pix[i] = 0xff
				}
			}
			got, err := Decode(Encode(img))
			if err != nil {
				t.Fatalf("%v: %v", size, err)
			}
			if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
				t.Errorf("%v: round trip mismatch (-want +got):\n%s", size, diff)
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			rle  models.RLE
		}{
			{"zero size", models.RLE{Size: [2]int{0, 10}, Counts: "MFQz"}},
			{"bad base64", models.RLE{Size: [2]int{10, 10}, Counts: "!!!"}},
			{"short", models.RLE{Size: [2]int{20, 10}, Counts: "MFQz"}},
			{"overflow", models.RLE{Size: [2]int{5, 10}, Counts: "MFQz"}},
			// "0T": continuation bit set on the last byte.
			{"truncated", models.RLE{Size: [2]int{10, 10}, Counts: "MFQ="}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Decode(&tt.rle)
				if !dberrors.IsDecode(err) || dberrors.CodeOf(err) != dberrors.ErrMalformedMask {
					t.Errorf("Decode() error = %v, want MALFORMED_MASK", err)
				}
			})
		}
	})
}
