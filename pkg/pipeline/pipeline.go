// Package pipeline provides the atlas build pipeline for atlaspack.
//
// This package implements the complete load → pack → composite → encode
// pipeline used by both the CLI and the HTTP server. By centralizing this
// logic, both entry points share defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: collect image files, decode them and optionally trim them
//  2. Pack: sort sprites and search for the smallest atlas (cached)
//  3. Composite: copy sprite pixels into the atlas buffer
//  4. Encode: encode the atlas image and the resource descriptor
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Inputs:   []string{"./sprites"},
//	    Output:   "atlas.png",
//	    Resource: "atlas.xml",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	err = pipeline.WriteFiles(result, opts)
//
// Sprites already in memory (for example from an upload) skip the load
// stage:
//
//	result, err := runner.Build(ctx, sprites, opts)
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/atlaspack/pkg/cache"
	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	descio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pixel"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultOutput is the atlas image written when no output is given.
	DefaultOutput = "atlas.png"

	// DefaultImageFormat is used when the output name has no known extension.
	DefaultImageFormat = FormatPNG

	DefaultBorder  = 0
	DefaultPadding = pack.DefaultPadding
	DefaultMaxSize = pack.DefaultMaxSize
)

// Image format constants.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// ValidImageFormats is the set of supported atlas image formats.
var ValidImageFormats = map[string]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatJPEG: imaging.JPEG,
	FormatGIF:  imaging.GIF,
	FormatBMP:  imaging.BMP,
	FormatTIFF: imaging.TIFF,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the atlas pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Inputs      []string `json:"inputs,omitempty"`
	Trim        bool     `json:"trim,omitempty"`
	TrimPath    string   `json:"trim_path,omitempty"`
	SkipInvalid bool     `json:"skip_invalid,omitempty"` // drop undecodable inputs with a warning

	// Pack options
	Packer     string `json:"packer,omitempty"`
	Ordering   string `json:"ordering,omitempty"`
	Border     int    `json:"border"`
	Padding    int    `json:"padding"`
	MaxSize    int    `json:"max_size,omitempty"`
	PowerOfTwo bool   `json:"pot,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"` // ignore cached layouts

	// Output options
	Output         string `json:"output,omitempty"`
	ImageFormat    string `json:"image_format,omitempty"`
	Resource       string `json:"resource,omitempty"`
	ResourceFormat string `json:"resource_format,omitempty"`
	Overlay        bool   `json:"overlay,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"` // overrides the runner's logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Sprites are the loaded sprites in packing order.
	Sprites []*sprite.Sprite

	// Layout is the packed layout (size, pieces, attempts).
	Layout *pack.Result

	// Atlas is the composited atlas image.
	Atlas *pixel.Buffer

	// Descriptor describes every placed sprite.
	Descriptor descio.Descriptor

	// Artifacts contains encoded outputs keyed by format
	// (the image format and, if requested, the resource format).
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SpriteCount int
	Width       int
	Height      int
	Attempts    int
	Efficiency  float64 // sprite pixels / atlas pixels
	LoadTime    time.Duration
	PackTime    time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateImageFormat checks that an atlas image format is supported.
func ValidateImageFormat(format string) error {
	if _, ok := ValidImageFormats[format]; !ok {
		return apperr.New(apperr.ErrCodeInvalidFormat,
			"invalid image format: %q (must be one of: png, jpeg, gif, bmp, tiff)", format)
	}
	return nil
}

// ValidateResourceFormat checks that a descriptor format is supported.
func ValidateResourceFormat(format string) error {
	for _, f := range descio.Formats() {
		if f == format {
			return nil
		}
	}
	return apperr.New(apperr.ErrCodeInvalidFormat,
		"invalid resource format: %q (must be one of: %s)", format, strings.Join(descio.Formats(), ", "))
}

// ImageFormatFromPath returns the image format implied by a file name,
// or DefaultImageFormat when the extension is unknown.
func ImageFormatFromPath(path string) string {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return DefaultImageFormat
	}
	for name, v := range ValidImageFormats {
		if v == f {
			return name
		}
	}
	return DefaultImageFormat
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Inputs) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "at least one input path is required")
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild validates and sets defaults for everything after loading.
func (o *Options) ValidateForBuild() error {
	o.SetPackDefaults()
	o.SetOutputDefaults()

	if err := apperr.ValidateNonNegative("border", o.Border); err != nil {
		return err
	}
	if err := apperr.ValidateNonNegative("padding", o.Padding); err != nil {
		return err
	}
	if err := apperr.ValidateNonNegative("max size", o.MaxSize); err != nil {
		return err
	}
	if _, err := pack.New(o.Packer, o.PackOptions()); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "packer")
	}
	if _, err := pack.Ordering(o.Ordering); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "ordering")
	}
	if err := ValidateImageFormat(o.ImageFormat); err != nil {
		return err
	}
	if o.Resource != "" {
		return ValidateResourceFormat(o.ResourceFormat)
	}
	return nil
}

// SetPackDefaults sets default values for packing.
func (o *Options) SetPackDefaults() {
	if o.Packer == "" {
		o.Packer = pack.DefaultPacker
	}
	if o.Ordering == "" {
		o.Ordering = pack.DefaultOrdering
	}
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
}

// SetOutputDefaults sets default values for encoding.
func (o *Options) SetOutputDefaults() {
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.ImageFormat == "" {
		o.ImageFormat = ImageFormatFromPath(o.Output)
	}
	if o.Resource != "" && o.ResourceFormat == "" {
		o.ResourceFormat = descio.FormatFromPath(o.Resource)
	}
}

// PackOptions returns the packing engine options.
func (o *Options) PackOptions() pack.Options {
	return pack.Options{
		Border:     o.Border,
		Padding:    o.Padding,
		MaxSize:    o.MaxSize,
		PowerOfTwo: o.PowerOfTwo,
		Overlay:    o.Overlay,
	}
}

// LoadOptions returns sprite loading options.
func (o *Options) LoadOptions() sprite.LoadOptions {
	return sprite.LoadOptions{
		Trim:        o.Trim,
		TrimPath:    o.TrimPath,
		SkipInvalid: o.SkipInvalid,
		Logger:      o.Logger,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Packer:     o.Packer,
		Ordering:   o.Ordering,
		Border:     o.Border,
		Padding:    o.Padding,
		MaxSize:    o.MaxSize,
		PowerOfTwo: o.PowerOfTwo,
	}
}

// Texture returns the texture name written into descriptors.
func (o *Options) Texture() string {
	return filepath.Base(o.Output)
}

// Formats lists the artifact formats a run produces.
func (o *Options) Formats() []string {
	if o.Resource == "" {
		return []string{o.ImageFormat}
	}
	return []string{o.ImageFormat, o.ResourceFormat}
}

func (o *Options) String() string {
	return fmt.Sprintf("packer=%s ordering=%s border=%d padding=%d max=%d pot=%v",
		o.Packer, o.Ordering, o.Border, o.Padding, o.MaxSize, o.PowerOfTwo)
}
