// Package pixel provides the 4-channel pixel buffer the atlas is composited
// into.
//
// Pixels are stored row-major as non-premultiplied RGBA, 4 bytes per pixel,
// with the origin at the top-left corner. Stride is the number of bytes
// between the starts of two consecutive rows.
package pixel

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/atlaspack/pkg/geom"
)

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// Buffer is a 2D array of RGBA pixels.
type Buffer struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// New allocates a zeroed (fully transparent) buffer.
func New(width, height int) *Buffer {
	width, height = max(width, 0), max(height, 0)
	stride := width * BytesPerPixel
	return &Buffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
}

// FromImage copies img into a new buffer whose origin is img.Bounds().Min.
func FromImage(img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return &Buffer{
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: nrgba.Stride,
		Pix:    nrgba.Pix,
	}
}

// Image returns an *image.NRGBA view sharing the buffer's pixels.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Size returns the buffer extent.
func (b *Buffer) Size() geom.Size { return geom.Size{Width: b.Width, Height: b.Height} }

// Bounds returns the rectangle covering the whole buffer.
func (b *Buffer) Bounds() geom.Rect { return geom.RectXYWH(0, 0, b.Width, b.Height) }

func (b *Buffer) offset(x, y int) int { return y*b.Stride + x*BytesPerPixel }

// At returns the pixel at (x, y). Out-of-range coordinates yield transparent black.
func (b *Buffer) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.NRGBA{}
	}
	i := b.offset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	i := b.offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
}

// SubBuffer copies the pixels of r into a new buffer.
func (b *Buffer) SubBuffer(r geom.Rect) *Buffer {
	r = clip(r, b.Bounds())
	out := New(r.Width(), r.Height())
	out.Blit(out.Bounds(), b, image.Pt(r.Left, r.Top))
	return out
}

// Blit copies a dst-sized block of src starting at srcOrigin into dst.
// Both rectangles are clipped to their buffers.
func (b *Buffer) Blit(dst geom.Rect, src *Buffer, srcOrigin image.Point) {
	w := min(dst.Width(), src.Width-srcOrigin.X, b.Width-dst.Left)
	h := min(dst.Height(), src.Height-srcOrigin.Y, b.Height-dst.Top)
	if w <= 0 || h <= 0 || dst.Left < 0 || dst.Top < 0 || srcOrigin.X < 0 || srcOrigin.Y < 0 {
		return
	}
	n := w * BytesPerPixel
	for y := 0; y < h; y++ {
		d := b.offset(dst.Left, dst.Top+y)
		s := src.offset(srcOrigin.X, srcOrigin.Y+y)
		copy(b.Pix[d:d+n], src.Pix[s:s+n])
	}
}

// BlendTint alpha-blends tint over every pixel in r with the given opacity:
//
//	out   = alpha*(tint-dst) + dst
//	outA  = dstA*(1-alpha) + alpha
//
// Channels are normalized to [0,1] before blending and truncated back to
// [0,255].
func (b *Buffer) BlendTint(r geom.Rect, tint color.NRGBA, alpha float32) {
	r = clip(r, b.Bounds())
	const inv = 1.0 / 255.0
	sR := float32(tint.R) * inv
	sG := float32(tint.G) * inv
	sB := float32(tint.B) * inv
	for y := r.Top; y < r.Bottom; y++ {
		i := b.offset(r.Left, y)
		for x := r.Left; x < r.Right; x++ {
			p := b.Pix[i : i+4 : i+4]
			dR := float32(p[0]) * inv
			dG := float32(p[1]) * inv
			dB := float32(p[2]) * inv
			dA := float32(p[3]) * inv
			p[0] = toByte(alpha*(sR-dR) + dR)
			p[1] = toByte(alpha*(sG-dG) + dG)
			p[2] = toByte(alpha*(sB-dB) + dB)
			p[3] = toByte(dA*(1-alpha) + alpha)
			i += BytesPerPixel
		}
	}
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255)
}

func clip(r, bounds geom.Rect) geom.Rect {
	out := geom.Rect{
		Left:   max(r.Left, bounds.Left),
		Top:    max(r.Top, bounds.Top),
		Right:  min(r.Right, bounds.Right),
		Bottom: min(r.Bottom, bounds.Bottom),
	}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}
