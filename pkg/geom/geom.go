// Package geom provides the integer rectangle and size types shared by the
// packing engine, the pixel buffer and the descriptor writers.
//
// Rectangles are half-open: a Rect covers the pixels x in [Left, Right) and
// y in [Top, Bottom).
package geom

import "fmt"

// Size is a non-negative pixel extent.
type Size struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// Area returns Width*Height.
func (s Size) Area() int { return s.Width * s.Height }

// Fits reports whether s fits inside o on both axes.
func (s Size) Fits(o Size) bool { return s.Width <= o.Width && s.Height <= o.Height }

// Max returns the per-axis maximum of s and o.
func (s Size) Max(o Size) Size {
	return Size{Width: max(s.Width, o.Width), Height: max(s.Height, o.Height)}
}

// Grow returns s with d added to both axes.
func (s Size) Grow(d int) Size { return Size{Width: s.Width + d, Height: s.Height + d} }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an axis-aligned rectangle in pixel coordinates.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// RectXYWH returns the rectangle with top-left (x, y) and the given extent.
func RectXYWH(x, y, w, h int) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Width returns Right-Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Size returns the extent of r.
func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// In reports whether every pixel of r is inside o.
func (r Rect) In(o Rect) bool {
	return r.Left >= o.Left && r.Top >= o.Top && r.Right <= o.Right && r.Bottom <= o.Bottom
}

// Expand grows r by dx on the right edge and dy on the bottom edge.
func (r Rect) Expand(dx, dy int) Rect {
	return Rect{Left: r.Left, Top: r.Top, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Inset shrinks r by d on all four edges. The result is clamped so that it
// never inverts.
func (r Rect) Inset(d int) Rect {
	out := Rect{Left: r.Left + d, Top: r.Top + d, Right: r.Right - d, Bottom: r.Bottom - d}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}

// Center returns the geometric center of r relative to its top-left corner.
func (r Rect) Center() (float64, float64) {
	return float64(r.Width()) * 0.5, float64(r.Height()) * 0.5
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// NextPow2 returns the smallest power of two that is >= n. NextPow2(0) is 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
