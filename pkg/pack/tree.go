package pack

import "github.com/matzehuels/atlaspack/pkg/geom"

// node is a region of the atlas interior. Children are arena handles;
// a and b are zero for leaves since the root (handle 0) is never a child.
type node struct {
	area  geom.Rect
	used  bool
	a, b  int
	piece int // 1-based index into pieces, 0 when free
}

func (n *node) leaf() bool { return n.a == 0 }

// TreePacker is a space-partition packer. Each placement splits a free
// leaf along one axis: the first child holds the sprite's footprint, the
// second keeps the leftover strip for later sprites.
type TreePacker struct {
	border  int
	padding int
	nodes   []node
	pieces  []Piece
}

// NewTreePacker returns a tree packer with the given border and padding.
func NewTreePacker(border, padding int) *TreePacker {
	return &TreePacker{border: border, padding: padding}
}

func (t *TreePacker) Name() string { return "tree" }

// SetSize discards the tree and creates a root covering the atlas
// interior [border, size-border).
func (t *TreePacker) SetSize(size geom.Size) {
	w := max(size.Width-2*t.border, 0)
	h := max(size.Height-2*t.border, 0)
	t.nodes = append(t.nodes[:0], node{area: geom.RectXYWH(t.border, t.border, w, h)})
	t.pieces = nil
}

func (t *TreePacker) Add(s Sprite) bool {
	if len(t.nodes) == 0 {
		return false
	}
	size := s.Size()
	idx, ok := t.insert(0, footprint(size, t.padding))
	if !ok {
		return false
	}
	r := t.nodes[idx].area
	t.nodes[idx].piece = len(t.pieces) + 1
	t.pieces = append(t.pieces, Piece{
		Sprite: s,
		Rect:   geom.RectXYWH(r.Left, r.Top, size.Width, size.Height),
	})
	return true
}

func (t *TreePacker) Pieces() []Piece { return t.pieces }

// insert returns the handle of the leaf that now holds fp.
func (t *TreePacker) insert(idx int, fp geom.Size) (int, bool) {
	n := t.nodes[idx]
	if !n.leaf() {
		if leaf, ok := t.insert(n.a, fp); ok {
			return leaf, true
		}
		return t.insert(n.b, fp)
	}
	if n.used {
		return 0, false
	}

	area := n.area
	if fp == area.Size() {
		t.nodes[idx].used = true
		return idx, true
	}
	if !fp.Fits(area.Size()) {
		return 0, false
	}

	var ra, rb geom.Rect
	leftW := area.Width() - fp.Width
	leftH := area.Height() - fp.Height
	if leftW <= leftH {
		ra = geom.Rect{Left: area.Left, Top: area.Top, Right: area.Right, Bottom: area.Top + fp.Height}
		rb = geom.Rect{Left: area.Left, Top: area.Top + fp.Height, Right: area.Right, Bottom: area.Bottom}
	} else {
		ra = geom.Rect{Left: area.Left, Top: area.Top, Right: area.Left + fp.Width, Bottom: area.Bottom}
		rb = geom.Rect{Left: area.Left + fp.Width, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
	}

	a := len(t.nodes)
	t.nodes = append(t.nodes, node{area: ra}, node{area: rb})
	t.nodes[idx].a, t.nodes[idx].b = a, a+1

	// childB is never retried for the sprite that caused the split.
	return t.insert(a, fp)
}
