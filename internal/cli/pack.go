package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/config"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
)

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var (
		configPath string
		cacheURL   string
		noCache    bool
	)
	def := config.Default()
	opts := pipeline.Options{
		Output:   def.Output,
		Padding:  def.Padding,
		MaxSize:  def.MaxSize,
		Packer:   def.Packer,
		Ordering: def.Ordering,
	}

	cmd := &cobra.Command{
		Use:   "pack [files or directories...]",
		Short: "Pack sprites into an atlas",
		Long: `Pack sprites into a single atlas image.

Directories are walked recursively; hidden entries are skipped and only
known image extensions are read. Each sprite's id is its path without the
--trim-path prefix and extension, with slashes replaced by underscores.

The atlas starts near the smallest square that holds every sprite and grows
until everything fits or --max is exceeded. Settings from atlaspack.toml are
used unless the matching flag is given.`,
		Example: `  # Pack a directory with an XML descriptor
  atlaspack pack sprites/ -o atlas.png --res atlas.xml

  # Power-of-two atlas, trimmed sprites, ids without the "sprites/" prefix
  atlaspack pack sprites/ --pot --trim --trim-path sprites/ --res atlas.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			mergeConfig(cmd.Flags().Changed, &opts, cfg)
			opts.Inputs = args

			cacheCfg := cfg.Cache
			if cmd.Flags().Changed("cache") {
				cacheCfg.URL = cacheURL
			}
			if noCache {
				cacheCfg.Disabled = true
			}
			return c.runPack(cmd.Context(), opts, cacheCfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (default: ./atlaspack.toml, then the user config dir)")
	f.StringVar(&cacheURL, "cache", "", "layout cache URL (redis://...); empty uses the file cache")
	f.BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	f.BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts")

	f.StringVarP(&opts.Output, "output", "o", opts.Output, "atlas image file")
	f.StringVar(&opts.ImageFormat, "format", "", "image format: png, jpeg, gif, bmp, tiff (default: from --output)")
	f.StringVar(&opts.Resource, "res", "", "descriptor file (none if empty)")
	f.StringVar(&opts.ResourceFormat, "res-format", "", "descriptor format: xml, json (default: from --res)")

	f.IntVarP(&opts.Border, "border", "b", opts.Border, "empty pixels around the atlas edge")
	f.IntVarP(&opts.Padding, "padding", "p", opts.Padding, "empty pixels between sprites")
	f.IntVar(&opts.MaxSize, "max", opts.MaxSize, "maximum atlas width and height")
	f.BoolVar(&opts.PowerOfTwo, "pot", false, "power-of-two atlas dimensions")
	f.StringVar(&opts.Packer, "packer", opts.Packer, "packing strategy: "+strings.Join(pack.Names(), ", "))
	f.StringVar(&opts.Ordering, "ordering", opts.Ordering, "sprite order before packing: "+strings.Join(pack.OrderingNames(), ", "))

	f.BoolVar(&opts.Trim, "trim", false, "remove transparent borders from sprites")
	f.StringVar(&opts.TrimPath, "trim-path", "", "path prefix removed from sprite ids")
	f.BoolVar(&opts.Overlay, "overlay", false, "tint placed sprites to reveal overlaps")
	f.BoolVar(&opts.SkipInvalid, "skip-invalid", false, "warn about and skip files that fail to decode")

	return cmd
}

// mergeConfig copies file settings into opts for every flag the user did
// not set.
func mergeConfig(changed func(string) bool, opts *pipeline.Options, cfg config.Config) {
	str := map[string]struct {
		dst *string
		val string
	}{
		"output":     {&opts.Output, cfg.Output},
		"format":     {&opts.ImageFormat, cfg.ImageFormat},
		"res":        {&opts.Resource, cfg.Resource},
		"res-format": {&opts.ResourceFormat, cfg.ResourceFormat},
		"packer":     {&opts.Packer, cfg.Packer},
		"ordering":   {&opts.Ordering, cfg.Ordering},
		"trim-path":  {&opts.TrimPath, cfg.TrimPath},
	}
	for name, v := range str {
		if !changed(name) {
			*v.dst = v.val
		}
	}

	ints := map[string]struct {
		dst *int
		val int
	}{
		"border":  {&opts.Border, cfg.Border},
		"padding": {&opts.Padding, cfg.Padding},
		"max":     {&opts.MaxSize, cfg.MaxSize},
	}
	for name, v := range ints {
		if !changed(name) {
			*v.dst = v.val
		}
	}

	bools := map[string]struct {
		dst *bool
		val bool
	}{
		"pot":     {&opts.PowerOfTwo, cfg.PowerOfTwo},
		"trim":    {&opts.Trim, cfg.Trim},
		"overlay": {&opts.Overlay, cfg.Overlay},

		"skip-invalid": {&opts.SkipInvalid, cfg.SkipInvalid},
	}
	for name, v := range bools {
		if !changed(name) {
			*v.dst = v.val
		}
	}
}

// runPack runs the pipeline and writes the atlas and descriptor.
func (c *CLI) runPack(ctx context.Context, opts pipeline.Options, cacheCfg config.CacheConfig) error {
	opts.Logger = loggerFromContext(ctx)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cacheCfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Packing sprites...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Packing failed")
		return explainPackError(err, opts)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := pipeline.WriteFiles(res, opts); err != nil {
		return err
	}

	printSuccess("Packed %d sprites", res.Stats.SpriteCount)
	printFile(opts.Output)
	if opts.Resource != "" {
		printFile(opts.Resource)
	}
	printPackStats(res.Stats, res.CacheInfo.LayoutHit)
	return nil
}

// explainPackError adds a hint to size errors.
func explainPackError(err error, opts pipeline.Options) error {
	var se *pack.SizeExceededError
	if !errors.As(err, &se) {
		return err
	}
	if pack.IsRejected(err) {
		printWarning("A sprite is larger than --max %d allows", opts.MaxSize)
	} else {
		printWarning("Sprites did not fit in %d×%d after %d attempts", opts.MaxSize, opts.MaxSize, se.Attempts)
	}
	if se.Attempts > 0 {
		printDetail("Largest tried: %s", se.Best)
	}
	printDetail("Needed: %s", se.Needed)
	if !opts.Trim {
		printNextStep("Try trimming transparent borders", "atlaspack pack --trim ...")
	}
	return err
}
