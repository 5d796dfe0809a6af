package cache

// KeyPrefix starts every key produced by DefaultKeyer.
const KeyPrefix = "atlaspack:"

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a packed layout for a set of sprites.
	// spritesHash covers sprite ids and sizes in packing order.
	LayoutKey(spritesHash string, opts LayoutKeyOpts) string

	// AtlasKey identifies a stored atlas artifact (kind is "png", "json", ...).
	AtlasKey(id, kind string) string
}

// LayoutKeyOpts holds every option that changes placement.
type LayoutKeyOpts struct {
	Packer     string `json:"packer"`
	Ordering   string `json:"ordering"`
	Border     int    `json:"border"`
	Padding    int    `json:"padding"`
	MaxSize    int    `json:"max_size"`
	PowerOfTwo bool   `json:"pot"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(spritesHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyPrefix+"layout", spritesHash, opts)
}

func (DefaultKeyer) AtlasKey(id, kind string) string {
	return KeyPrefix + "atlas:" + id + ":" + kind
}
