package pack

import (
	"fmt"
	"image/color"
	"math/rand"
	"testing"

	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pixel"
)

type testSprite struct {
	id  string
	buf *pixel.Buffer
}

func (s *testSprite) ID() string            { return s.id }
func (s *testSprite) Size() geom.Size       { return s.buf.Size() }
func (s *testSprite) Pixels() *pixel.Buffer { return s.buf }

func newSprite(id string, w, h int, c color.NRGBA) *testSprite {
	buf := pixel.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.Set(x, y, c)
		}
	}
	return &testSprite{id: id, buf: buf}
}

func sprites(sizes ...geom.Size) []Sprite {
	out := make([]Sprite, len(sizes))
	for i, s := range sizes {
		out[i] = newSprite(fmt.Sprintf("s%d", i), s.Width, s.Height, color.NRGBA{R: uint8(i * 40), A: 255})
	}
	return out
}

func randomSprites(seed int64, n, maxSide int) []Sprite {
	rng := rand.New(rand.NewSource(seed))
	sizes := make([]geom.Size, n)
	for i := range sizes {
		sizes[i] = geom.Size{Width: 1 + rng.Intn(maxSide), Height: 1 + rng.Intn(maxSide)}
	}
	return sprites(sizes...)
}

// checkLayout verifies containment in [border, size-border) and that no two
// padded footprints intersect.
func checkLayout(t *testing.T, res *Result, border, padding int) {
	t.Helper()
	interior := geom.Rect{
		Left: border, Top: border,
		Right: res.Size.Width - border, Bottom: res.Size.Height - border,
	}
	for i, a := range res.Pieces {
		if a.Rect.Size() != a.Sprite.Size() {
			t.Errorf("piece %d rect %v has size %v, want %v", i, a.Rect, a.Rect.Size(), a.Sprite.Size())
		}
		if !a.Rect.In(interior) {
			t.Errorf("piece %d rect %v not inside %v", i, a.Rect, interior)
		}
		for j := i + 1; j < len(res.Pieces); j++ {
			b := res.Pieces[j]
			if a.Rect.Expand(padding, padding).Intersects(b.Rect.Expand(padding, padding)) {
				t.Errorf("pieces %d %v and %d %v overlap with padding %d", i, a.Rect, j, b.Rect, padding)
			}
		}
	}
}
