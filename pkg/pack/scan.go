package pack

import "github.com/matzehuels/atlaspack/pkg/geom"

// ScanPacker tries every top-left position in row-major order and takes
// the first one whose padded rect is clear of every placed piece. It is
// slower than [TreePacker] but its result is easy to check.
type ScanPacker struct {
	border  int
	padding int
	size    geom.Size
	pieces  []Piece
}

// NewScanPacker returns a scan packer with the given border and padding.
func NewScanPacker(border, padding int) *ScanPacker {
	return &ScanPacker{border: border, padding: padding}
}

func (p *ScanPacker) Name() string { return "scan" }

func (p *ScanPacker) SetSize(size geom.Size) {
	p.size = size
	p.pieces = nil
}

func (p *ScanPacker) Add(s Sprite) bool {
	size := s.Size()
	maxX := p.size.Width - p.border
	maxY := p.size.Height - p.border

	for y := p.border; y+size.Height <= maxY; y++ {
		for x := p.border; x+size.Width <= maxX; {
			cand := geom.RectXYWH(x, y, size.Width, size.Height)
			if hit, ok := p.collide(cand); ok {
				x = hit.Right + p.padding
				continue
			}
			p.pieces = append(p.pieces, Piece{Sprite: s, Rect: cand})
			return true
		}
	}
	return false
}

func (p *ScanPacker) Pieces() []Piece { return p.pieces }

// soloSize is s itself: padding only separates pieces, so a sprite may
// touch the border.
func (p *ScanPacker) soloSize(s geom.Size) geom.Size { return s }

// collide returns the first placed rect whose padded footprint overlaps
// the padded candidate.
func (p *ScanPacker) collide(cand geom.Rect) (geom.Rect, bool) {
	c := cand.Expand(p.padding, p.padding)
	for _, pc := range p.pieces {
		if c.Intersects(pc.Rect.Expand(p.padding, p.padding)) {
			return pc.Rect, true
		}
	}
	return geom.Rect{}, false
}
