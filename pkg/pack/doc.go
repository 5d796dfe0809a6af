// Package pack places rectangular sprites into a single atlas.
//
// # Overview
//
// Packing happens in sessions. A session is one attempt at a fixed atlas
// size: the [Packer] is reset with [Packer.SetSize] and sprites are added
// one at a time. Two strategies implement [Packer]:
//
//   - tree: a space-partition packer that splits free regions into a
//     binary tree (see [TreePacker])
//   - scan: a row-major scan that rejects candidates colliding with any
//     placed piece (see [ScanPacker])
//
// The [Controller] drives the sessions. It seeds a size from the total
// sprite area, and on the first placement failure grows the atlas and
// starts over with a fresh session until everything fits or the maximum
// size is exceeded.
//
// # Ordering
//
// Tree splits are irrevocable within a session, so placement quality
// depends on insertion order. Callers sort sprites with [Sort] using one
// of the comparators in [Orderings] (default [ByMaxSide]) or their own.
//
// # Usage
//
//	less, _ := pack.Ordering("maxside")
//	pack.Sort(sprites, less)
//
//	p, _ := pack.New("tree", opts)
//	res, err := pack.NewController(opts).Pack(sprites, p)
//	if pack.IsSizeExceeded(err) {
//	    // nothing fits within opts.MaxSize
//	}
//	atlas := pack.Composite(res, opts.Overlay)
//
// # Padding and Border
//
// Padding is applied once, on the trailing (right and bottom) edges of
// each sprite's footprint. Border is kept clear on all four atlas edges.
package pack
