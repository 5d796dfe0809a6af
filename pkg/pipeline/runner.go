package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/atlaspack/pkg/cache"
	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/geom"
	descio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pixel"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → pack → composite → encode pipeline.
// Nothing is written to disk; see WriteFiles.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	sprites, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	r.logger(opts).Info("loaded sprites",
		"count", len(sprites),
		"duration", loadTime)

	result, err := r.Build(ctx, sprites, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load collects and decodes the input sprites.
func (r *Runner) Load(ctx context.Context, opts Options) (sprites []*sprite.Sprite, err error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, len(opts.Inputs))
	defer func() {
		observability.Pipeline().OnLoadComplete(ctx, len(sprites), time.Since(start), err)
	}()

	paths, err := sprite.Collect(opts.Inputs)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		r.logger(opts).Warn("no images found", "inputs", opts.Inputs)
	}
	lo := opts.LoadOptions()
	lo.Logger = r.logger(opts)
	return sprite.LoadAll(ctx, paths, lo)
}

// Build packs, composites and encodes sprites that are already loaded.
func (r *Runner) Build(ctx context.Context, sprites []*sprite.Sprite, opts Options) (*Result, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if len(sprites) == 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "no sprites found in %v", opts.Inputs)
	}

	logger := r.logger(opts)
	result := &Result{}

	// Stage 2: Pack
	packStart := time.Now()
	ordered, layout, hit, err := r.PackWithCacheInfo(ctx, sprites, opts)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	result.Sprites = ordered
	result.Layout = layout
	result.Stats.PackTime = time.Since(packStart)
	result.CacheInfo.LayoutHit = hit
	result.Stats.SpriteCount = len(layout.Pieces)
	result.Stats.Width = layout.Size.Width
	result.Stats.Height = layout.Size.Height
	result.Stats.Attempts = len(layout.Attempts)
	result.Stats.Efficiency = efficiency(layout)

	logger.Info("packed atlas",
		"size", layout.Size,
		"attempts", len(layout.Attempts),
		"efficiency", fmt.Sprintf("%.1f%%", result.Stats.Efficiency*100),
		"cached", hit,
		"duration", result.Stats.PackTime)

	// Stage 3 + 4: Composite and encode
	encodeStart := time.Now()
	result.Atlas = pack.Composite(layout, opts.Overlay)
	result.Descriptor = descio.NewDescriptor(opts.Texture(), layout)
	result.Artifacts, err = r.Encode(ctx, result.Atlas, result.Descriptor, opts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Stats.EncodeTime = time.Since(encodeStart)

	logger.Info("encoded outputs",
		"formats", opts.Formats(),
		"duration", result.Stats.EncodeTime)

	return result, nil
}

// PackWithCacheInfo sorts sprites by opts.Ordering and packs them, reusing
// a cached layout when one exists for the same sprites and options. It
// returns the sprites in packing order.
func (r *Runner) PackWithCacheInfo(ctx context.Context, sprites []*sprite.Sprite, opts Options) ([]*sprite.Sprite, *pack.Result, bool, error) {
	opts.SetPackDefaults()

	less, err := pack.Ordering(opts.Ordering)
	if err != nil {
		return nil, nil, false, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "ordering")
	}
	ordered := slices.Clone(sprites)
	pack.Sort(ordered, less)

	key := r.Keyer.LayoutKey(spritesHash(ordered), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := restoreLayout(data, ordered); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return ordered, res, true, nil
			}
			r.logger(opts).Debug("discarding stale cached layout", "key", key)
		} else if err != nil {
			r.logger(opts).Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res, err := r.pack(ctx, ordered, opts)
	if err != nil {
		return nil, nil, false, err
	}

	if data, err := json.Marshal(snapshot(res)); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.logger(opts).Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return ordered, res, false, nil
}

// PackSprites is a convenience wrapper around PackWithCacheInfo that
// discards the ordering and cache hit info.
func (r *Runner) PackSprites(ctx context.Context, sprites []*sprite.Sprite, opts Options) (*pack.Result, error) {
	_, res, _, err := r.PackWithCacheInfo(ctx, sprites, opts)
	return res, err
}

func (r *Runner) pack(ctx context.Context, ordered []*sprite.Sprite, opts Options) (res *pack.Result, err error) {
	p, err := pack.New(opts.Packer, opts.PackOptions())
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "packer")
	}

	start := time.Now()
	observability.Pipeline().OnPackStart(ctx, p.Name(), len(ordered))
	defer func() {
		var size geom.Size
		attempts := 0
		if res != nil {
			size, attempts = res.Size, len(res.Attempts)
		}
		observability.Pipeline().OnPackComplete(ctx, p.Name(), size.Width, size.Height, attempts, time.Since(start), err)
	}()

	in := make([]pack.Sprite, len(ordered))
	for i, s := range ordered {
		in[i] = s
	}

	c := pack.NewController(opts.PackOptions())
	c.Logger = r.logger(opts)
	c.OnAttempt = func(size geom.Size) {
		observability.Pipeline().OnPackAttempt(ctx, p.Name(), size.Width, size.Height)
	}
	return c.Pack(in, p)
}

// Encode encodes the atlas image and, when opts.Resource is set, the
// descriptor. The result is keyed by format.
func (r *Runner) Encode(ctx context.Context, atlas *pixel.Buffer, desc descio.Descriptor, opts Options) (artifacts map[string][]byte, err error) {
	start := time.Now()
	formats := opts.Formats()
	observability.Pipeline().OnEncodeStart(ctx, formats)
	defer func() {
		observability.Pipeline().OnEncodeComplete(ctx, formats, time.Since(start), err)
	}()

	artifacts = make(map[string][]byte, len(formats))

	var img bytes.Buffer
	if err := imaging.Encode(&img, atlas.Image(), ValidImageFormats[opts.ImageFormat]); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeEncode, err, "encode %s", opts.ImageFormat)
	}
	artifacts[opts.ImageFormat] = img.Bytes()

	if opts.Resource != "" {
		var res bytes.Buffer
		if err := descio.Write(desc, opts.ResourceFormat, &res); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeEncode, err, "encode %s", opts.ResourceFormat)
		}
		artifacts[opts.ResourceFormat] = res.Bytes()
	}
	return artifacts, nil
}

// WriteFiles writes the atlas image to opts.Output and the descriptor to
// opts.Resource.
func WriteFiles(res *Result, opts Options) error {
	opts.SetOutputDefaults()
	if err := os.WriteFile(opts.Output, res.Artifacts[opts.ImageFormat], 0o644); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "write %s", opts.Output)
	}
	if opts.Resource == "" {
		return nil
	}
	if err := os.WriteFile(opts.Resource, res.Artifacts[opts.ResourceFormat], 0o644); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "write %s", opts.Resource)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func efficiency(res *pack.Result) float64 {
	total := res.Size.Area()
	if total == 0 {
		return 0
	}
	used := 0
	for _, pc := range res.Pieces {
		used += pc.Rect.Size().Area()
	}
	return float64(used) / float64(total)
}
