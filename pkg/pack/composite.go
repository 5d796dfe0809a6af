package pack

import (
	"image"
	"image/color"

	"github.com/matzehuels/atlaspack/pkg/pixel"
)

// Overlay tint applied to every placed region when overlay is on.
var (
	OverlayTint  = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	OverlayAlpha = float32(0.6)
)

// Composite renders res into a new buffer of res.Size, copying each piece
// in placement order. With overlay set, each region is blended with
// [OverlayTint] right after its copy, so overlaps show as double tint.
func Composite(res *Result, overlay bool) *pixel.Buffer {
	dst := pixel.New(res.Size.Width, res.Size.Height)
	for _, pc := range res.Pieces {
		dst.Blit(pc.Rect, pc.Sprite.Pixels(), image.Point{})
		if overlay {
			dst.BlendTint(pc.Rect, OverlayTint, OverlayAlpha)
		}
	}
	return dst
}
