package sprite

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/atlaspack/pkg/pixel"
)

// Opaque returns the smallest rectangle holding every pixel of buf whose
// alpha is above threshold. A fully transparent image yields a 1x1
// rectangle at the origin so the sprite still gets a slot in the atlas.
func Opaque(buf *pixel.Buffer, threshold uint8) image.Rectangle {
	minX, minY := buf.Width, buf.Height
	maxX, maxY := -1, -1
	for y := 0; y < buf.Height; y++ {
		row := buf.Pix[y*buf.Stride:]
		for x := 0; x < buf.Width; x++ {
			if row[x*pixel.BytesPerPixel+3] <= threshold {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rect(0, 0, min(1, buf.Width), min(1, buf.Height))
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Trim crops transparent borders from s in place. It reports whether
// anything was removed.
func Trim(s *Sprite) bool {
	r := Opaque(s.Image, 0)
	if r == image.Rect(0, 0, s.Image.Width, s.Image.Height) {
		return false
	}
	s.Image = pixel.FromImage(imaging.Crop(s.Image.Image(), r))
	s.Offset = s.Offset.Add(r.Min)
	s.Trimmed = true
	return true
}
