package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/atlaspack/pkg/cache"
	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

// layoutSnapshot is the cached form of a pack.Result. Pieces refer to
// sprites by their index in packing order.
type layoutSnapshot struct {
	Size     geom.Size       `json:"size"`
	Attempts []geom.Size     `json:"attempts"`
	Pieces   []pieceSnapshot `json:"pieces"`
}

type pieceSnapshot struct {
	Index int       `json:"index"`
	ID    string    `json:"id"`
	Rect  geom.Rect `json:"rect"`
}

func snapshot(res *pack.Result) layoutSnapshot {
	s := layoutSnapshot{
		Size:     res.Size,
		Attempts: res.Attempts,
		Pieces:   make([]pieceSnapshot, len(res.Pieces)),
	}
	for i, pc := range res.Pieces {
		s.Pieces[i] = pieceSnapshot{Index: i, ID: pc.Sprite.ID(), Rect: pc.Rect}
	}
	return s
}

// restoreLayout rebuilds a pack.Result for ordered from cached data. It
// fails when the snapshot does not match the sprites.
func restoreLayout(data []byte, ordered []*sprite.Sprite) (*pack.Result, error) {
	var s layoutSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Pieces) != len(ordered) {
		return nil, fmt.Errorf("cached layout has %d pieces, want %d", len(s.Pieces), len(ordered))
	}

	res := &pack.Result{
		Size:     s.Size,
		Attempts: s.Attempts,
		Pieces:   make([]pack.Piece, len(s.Pieces)),
	}
	for i, p := range s.Pieces {
		if p.Index < 0 || p.Index >= len(ordered) {
			return nil, fmt.Errorf("cached piece %d: index %d out of range", i, p.Index)
		}
		spr := ordered[p.Index]
		if spr.ID() != p.ID || spr.Size() != p.Rect.Size() {
			return nil, fmt.Errorf("cached piece %d does not match sprite %s", i, spr.ID())
		}
		res.Pieces[i] = pack.Piece{Sprite: spr, Rect: p.Rect}
	}
	return res, nil
}

// spritesHash covers sprite ids and sizes in packing order, which is
// everything placement depends on.
func spritesHash(ordered []*sprite.Sprite) string {
	type entry struct {
		ID   string    `json:"id"`
		Size geom.Size `json:"size"`
	}
	entries := make([]entry, len(ordered))
	for i, s := range ordered {
		entries[i] = entry{ID: s.ID(), Size: s.Size()}
	}
	h, _ := cache.HashJSON(entries)
	return h
}
