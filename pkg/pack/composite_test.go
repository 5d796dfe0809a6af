package pack

import (
	"image/color"
	"testing"

	"github.com/matzehuels/atlaspack/pkg/geom"
)

func compositeFixture() *Result {
	red := newSprite("red", 2, 2, color.NRGBA{R: 255, A: 255})
	green := newSprite("green", 2, 2, color.NRGBA{G: 200, B: 20, A: 128})
	return &Result{
		Size: geom.Size{Width: 4, Height: 3},
		Pieces: []Piece{
			{Sprite: red, Rect: geom.RectXYWH(0, 0, 2, 2)},
			{Sprite: green, Rect: geom.RectXYWH(2, 0, 2, 2)},
		},
	}
}

func TestCompositeCopy(t *testing.T) {
	res := compositeFixture()
	out := Composite(res, false)

	if out.Size() != res.Size {
		t.Fatalf("Size = %v, want %v", out.Size(), res.Size)
	}
	for _, pc := range res.Pieces {
		src := pc.Sprite.Pixels()
		for y := 0; y < pc.Rect.Height(); y++ {
			for x := 0; x < pc.Rect.Width(); x++ {
				got := out.At(pc.Rect.Left+x, pc.Rect.Top+y)
				if want := src.At(x, y); got != want {
					t.Errorf("%s (%d,%d) = %v, want %v", pc.Sprite.ID(), x, y, got, want)
				}
			}
		}
	}
	if got := out.At(0, 2); got != (color.NRGBA{}) {
		t.Errorf("unplaced pixel = %v, want transparent", got)
	}
}

func TestCompositeOverlay(t *testing.T) {
	res := compositeFixture()
	out := Composite(res, true)

	blend := func(dst, tint uint8, a float64) float64 {
		d, s := float64(dst)/255, float64(tint)/255
		return (a*(s-d) + d) * 255
	}
	near := func(got uint8, want float64) bool {
		d := float64(got) - want
		return d >= -1 && d <= 1
	}

	a := float64(OverlayAlpha)
	for _, pc := range res.Pieces {
		src := pc.Sprite.Pixels()
		for y := 0; y < pc.Rect.Height(); y++ {
			for x := 0; x < pc.Rect.Width(); x++ {
				s := src.At(x, y)
				got := out.At(pc.Rect.Left+x, pc.Rect.Top+y)
				wantA := (float64(s.A)/255*(1-a) + a) * 255
				if !near(got.R, blend(s.R, OverlayTint.R, a)) ||
					!near(got.G, blend(s.G, OverlayTint.G, a)) ||
					!near(got.B, blend(s.B, OverlayTint.B, a)) ||
					!near(got.A, wantA) {
					t.Errorf("%s (%d,%d) = %v, want blend of %v", pc.Sprite.ID(), x, y, got, s)
				}
			}
		}
	}
	if got := out.At(3, 2); got != (color.NRGBA{}) {
		t.Errorf("unplaced pixel = %v, want transparent", got)
	}
}
