package pack

import (
	"fmt"
	"sort"

	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pixel"
)

// Default option values.
const (
	DefaultPadding = 1
	DefaultMaxSize = 2048
	DefaultPacker  = "tree"
)

// Sprite is a read-only image handle. The packer only reads its size;
// the compositor reads its pixels.
type Sprite interface {
	ID() string
	Size() geom.Size
	Pixels() *pixel.Buffer
}

// Piece is a sprite placed in the atlas. Rect has the sprite's size;
// padding is not included.
type Piece struct {
	Sprite Sprite
	Rect   geom.Rect
}

// Packer places sprites into an atlas of a fixed size.
//
// SetSize starts a new session and discards every piece placed so far.
// Add returns false when the sprite does not fit; the session is left as
// it was so the caller can grow and retry.
type Packer interface {
	Name() string
	SetSize(size geom.Size)
	Add(s Sprite) bool
	Pieces() []Piece
}

// soloSizer is implemented by packers that need less than the padded
// footprint to place a lone sprite.
type soloSizer interface {
	soloSize(s geom.Size) geom.Size
}

// Options configures packing.
type Options struct {
	Border     int  `json:"border" toml:"border"`
	Padding    int  `json:"padding" toml:"padding"`
	MaxSize    int  `json:"max_size" toml:"max_size"`
	PowerOfTwo bool `json:"pot" toml:"pot"`
	Overlay    bool `json:"overlay" toml:"overlay"`
}

// DefaultOptions returns options with default padding and maximum size.
func DefaultOptions() Options {
	return Options{Padding: DefaultPadding, MaxSize: DefaultMaxSize}
}

func (o Options) maxSize() int {
	if o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

var packers = map[string]func(Options) Packer{
	"tree": func(o Options) Packer { return NewTreePacker(o.Border, o.Padding) },
	"scan": func(o Options) Packer { return NewScanPacker(o.Border, o.Padding) },
}

// New returns the packer registered under name.
func New(name string, opts Options) (Packer, error) {
	if name == "" {
		name = DefaultPacker
	}
	f, ok := packers[name]
	if !ok {
		return nil, fmt.Errorf("unknown packer %q (available: %v)", name, Names())
	}
	return f(opts), nil
}

// Names returns the registered packer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(packers))
	for n := range packers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func footprint(s geom.Size, padding int) geom.Size {
	return geom.Size{Width: s.Width + padding, Height: s.Height + padding}
}
