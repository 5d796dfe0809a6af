package pack

import (
	"fmt"
	"sort"

	"github.com/matzehuels/atlaspack/pkg/geom"
)

// DefaultOrdering is the name of the ordering used when none is given.
const DefaultOrdering = "maxside"

// Less reports whether a sprite of size a should be placed before one of
// size b. A nil Less keeps the input order.
type Less func(a, b geom.Size) bool

// ByMaxSide places the sprite with the larger of width and height first,
// then the larger area, then the taller one.
func ByMaxSide(a, b geom.Size) bool {
	ma, mb := max(a.Width, a.Height), max(b.Width, b.Height)
	if ma != mb {
		return ma > mb
	}
	if a.Area() != b.Area() {
		return a.Area() > b.Area()
	}
	return a.Height > b.Height
}

// ByArea places larger sprites first.
func ByArea(a, b geom.Size) bool {
	if a.Area() != b.Area() {
		return a.Area() > b.Area()
	}
	return ByMaxSide(a, b)
}

// ByHeight places taller sprites first.
func ByHeight(a, b geom.Size) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	return a.Width > b.Width
}

// ByWidth places wider sprites first.
func ByWidth(a, b geom.Size) bool {
	if a.Width != b.Width {
		return a.Width > b.Width
	}
	return a.Height > b.Height
}

// ByPerimeter places sprites with the larger perimeter first.
func ByPerimeter(a, b geom.Size) bool {
	pa, pb := a.Width+a.Height, b.Width+b.Height
	if pa != pb {
		return pa > pb
	}
	return ByMaxSide(a, b)
}

// Orderings maps ordering names to comparators. "none" keeps input order.
var Orderings = map[string]Less{
	"maxside":   ByMaxSide,
	"area":      ByArea,
	"height":    ByHeight,
	"width":     ByWidth,
	"perimeter": ByPerimeter,
	"none":      nil,
}

// Ordering returns the comparator registered under name.
// An empty name selects [DefaultOrdering].
func Ordering(name string) (Less, error) {
	if name == "" {
		name = DefaultOrdering
	}
	less, ok := Orderings[name]
	if !ok {
		return nil, fmt.Errorf("unknown ordering %q (available: %v)", name, OrderingNames())
	}
	return less, nil
}

// OrderingNames returns the registered ordering names in sorted order.
func OrderingNames() []string {
	names := make([]string, 0, len(Orderings))
	for n := range Orderings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sort orders sprites in place. The sort is stable so sprites that compare
// equal keep their input order.
func Sort[S Sprite](sprites []S, less Less) {
	if less == nil {
		return
	}
	sort.SliceStable(sprites, func(i, j int) bool {
		return less(sprites[i].Size(), sprites[j].Size())
	})
}
