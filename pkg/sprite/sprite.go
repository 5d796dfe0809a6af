// Package sprite loads source images for packing.
//
// It covers everything outside the packing core that turns files on disk
// into [pack.Sprite] values: directory traversal ([Collect]), decoding
// ([Load], [Decode]), transparent-border trimming ([Trim]) and deriving
// the sprite id written to resource descriptors ([ID]).
package sprite

import (
	"image"
	"path"
	"path/filepath"
	"strings"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/geom"
	"github.com/matzehuels/atlaspack/pkg/pixel"
)

// Sprite is a decoded source image.
type Sprite struct {
	Name   string        // id used in descriptors
	Path   string        // source path
	Image  *pixel.Buffer // pixels after trimming
	Source geom.Size     // size before trimming
	Offset image.Point   // top-left of Image within the source

	Trimmed bool
}

func (s *Sprite) ID() string            { return s.Name }
func (s *Sprite) Size() geom.Size       { return s.Image.Size() }
func (s *Sprite) Pixels() *pixel.Buffer { return s.Image }

// ID derives a sprite id from its path: a leading "./" and trimPath are
// removed from the front, then the extension, and the remaining
// separators become underscores.
//
//	ID("./art/ui/button.png", "")     // "art_ui_button"
//	ID("./art/ui/button.png", "art/") // "ui_button"
func ID(p, trimPath string) (string, error) {
	id := strings.TrimPrefix(filepath.ToSlash(p), "./")
	if trimPath != "" {
		prefix := strings.TrimPrefix(filepath.ToSlash(trimPath), "./")
		if !strings.HasPrefix(id, prefix) {
			return "", apperr.New(apperr.ErrCodeInvalidPath, "trim path %q is not a prefix of %q", trimPath, p)
		}
		id = strings.TrimPrefix(id[len(prefix):], "/")
	}
	id = strings.TrimSuffix(id, path.Ext(id))
	id = strings.ReplaceAll(id, "/", "_")
	if id == "" {
		return "", apperr.New(apperr.ErrCodeInvalidPath, "trim path %q leaves no id for %q", trimPath, p)
	}
	return id, nil
}

// TrimInfo reports where Image sits inside the untrimmed source.
func (s *Sprite) TrimInfo() (image.Point, geom.Size, bool) {
	return s.Offset, s.Source, s.Trimmed
}
