package io

import (
	"image"

	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// Descriptor lists every sprite placed in one atlas texture.
type Descriptor struct {
	Texture string  `json:"texture"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Sprites []Frame `json:"sprites"`
}

// Frame is one sprite's placement.
type Frame struct {
	ID       string  `json:"id"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	W        int     `json:"w"`
	H        int     `json:"h"`
	HotspotX float64 `json:"hotspot_x"`
	HotspotY float64 `json:"hotspot_y"`

	OffsetX int `json:"offset_x,omitempty"`
	OffsetY int `json:"offset_y,omitempty"`
	SourceW int `json:"source_w,omitempty"`
	SourceH int `json:"source_h,omitempty"`
}

// Rect returns the frame's placement rectangle.
func (f Frame) Rect() geom.Rect { return geom.RectXYWH(f.X, f.Y, f.W, f.H) }

// Trimmable is implemented by sprites that had transparent borders removed.
type Trimmable interface {
	TrimInfo() (offset image.Point, source geom.Size, trimmed bool)
}

// NewDescriptor builds a descriptor for res, in placement order.
func NewDescriptor(texture string, res *pack.Result) Descriptor {
	d := Descriptor{
		Texture: texture,
		Width:   res.Size.Width,
		Height:  res.Size.Height,
		Sprites: make([]Frame, len(res.Pieces)),
	}
	for i, pc := range res.Pieces {
		hx, hy := pc.Rect.Center()
		f := Frame{
			ID:       pc.Sprite.ID(),
			X:        pc.Rect.Left,
			Y:        pc.Rect.Top,
			W:        pc.Rect.Width(),
			H:        pc.Rect.Height(),
			HotspotX: hx,
			HotspotY: hy,
		}
		if t, ok := pc.Sprite.(Trimmable); ok {
			if off, src, trimmed := t.TrimInfo(); trimmed {
				f.OffsetX, f.OffsetY = off.X, off.Y
				f.SourceW, f.SourceH = src.Width, src.Height
			}
		}
		d.Sprites[i] = f
	}
	return d
}
