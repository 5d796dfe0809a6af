package sprite

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// webp is not covered by imaging's own decoders.
	_ "golang.org/x/image/webp"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pixel"
)

// Extensions lists the file extensions Collect picks up from directories.
var Extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// LoadOptions controls how sprites are read.
type LoadOptions struct {
	Trim     bool   // crop transparent borders
	TrimPath string // prefix removed from paths when deriving ids
	Workers  int    // parallel decoders for LoadAll; 0 means GOMAXPROCS

	// SkipInvalid makes LoadAll drop files that fail to decode instead of
	// failing the run. Each skipped file is logged as a warning on Logger.
	// Missing or unreadable files still fail.
	SkipInvalid bool
	Logger      *log.Logger
}

// Load reads and decodes the image at path.
func Load(path string, opts LoadOptions) (*Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "sprite %s", path)
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "open sprite %s", path)
	}
	defer f.Close()

	return Decode(path, f, opts)
}

// Decode decodes a sprite from r. name is used for the id and in errors.
func Decode(name string, r io.Reader, opts LoadOptions) (*Sprite, error) {
	id, err := ID(name, opts.TrimPath)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeDecode, err, "decode %s", name)
	}

	buf := pixel.FromImage(img)
	s := &Sprite{
		Name:   id,
		Path:   name,
		Image:  buf,
		Source: buf.Size(),
	}
	if opts.Trim {
		Trim(s)
	}
	return s, nil
}

// LoadAll decodes paths concurrently. The result keeps the order of paths
// and the first error cancels the remaining work. With SkipInvalid,
// undecodable files are left out of the result.
func LoadAll(ctx context.Context, paths []string, opts LoadOptions) ([]*Sprite, error) {
	out := make([]*Sprite, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := Load(p, opts)
			if err != nil {
				if opts.SkipInvalid && apperr.Is(err, apperr.ErrCodeDecode) {
					if opts.Logger != nil {
						opts.Logger.Warn("skipping sprite", "path", p, "err", err)
					}
					return nil
				}
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(s *Sprite) bool { return s == nil }), nil
}

// Collect expands paths into a list of image files. Directories are walked
// recursively in lexical order, skipping hidden entries and files without
// a known image extension. Files named directly are always kept.
func Collect(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		root = strings.TrimSuffix(root, "/")
		if root == "" {
			root = "/"
		}
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "input %s", root)
			}
			return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "input %s", root)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if Extensions[strings.ToLower(filepath.Ext(p))] {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "walk %s", root)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
