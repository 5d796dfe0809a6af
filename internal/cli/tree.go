package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

// treeCommand creates the tree command for visualizing the tree packer's
// split tree.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		output string
		dot    bool
	)
	opts := pipeline.Options{Padding: pipeline.DefaultPadding}

	cmd := &cobra.Command{
		Use:   "tree [files or directories...]",
		Short: "Render the tree packer's split tree (debug tool)",
		Long: `Pack sprites with the tree packer and render the final split tree.

Interior nodes show the region they split, filled leaves hold a sprite and
dashed leaves are free space.`,
		Example: `  atlaspack tree sprites/ -o tree.svg
  atlaspack tree sprites/ --dot | dot -Tpng > tree.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tm := startTimer(loggerFromContext(ctx))

			opts.Inputs = args
			opts.Packer = "tree"
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			paths, err := sprite.Collect(opts.Inputs)
			if err != nil {
				return err
			}
			sprites, err := sprite.LoadAll(ctx, paths, opts.LoadOptions())
			if err != nil {
				return err
			}
			less, _ := pack.Ordering(opts.Ordering)
			pack.Sort(sprites, less)

			in := make([]pack.Sprite, len(sprites))
			for i, s := range sprites {
				in[i] = s
			}
			tp := pack.NewTreePacker(opts.Border, opts.Padding)
			ctrl := pack.NewController(opts.PackOptions())
			ctrl.Logger = loggerFromContext(ctx)
			res, err := ctrl.Pack(in, tp)
			if err != nil {
				return err
			}
			tm.done("Packed split tree", "sprites", len(res.Pieces), "size", res.Size)

			out := []byte(tp.ToDOT())
			if !dot {
				if out, err = pack.RenderSVG(string(out)); err != nil {
					return fmt.Errorf("render: %w", err)
				}
			}

			if output == "" {
				_, err := os.Stdout.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printSuccess("Split tree generated")
			printKeyValue("Atlas", res.Size.String())
			printKeyValue("Attempts", fmt.Sprintf("%d", len(res.Attempts)))
			printFile(output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	f.BoolVar(&dot, "dot", false, "write Graphviz DOT instead of SVG")
	f.IntVarP(&opts.Border, "border", "b", 0, "empty pixels around the atlas edge")
	f.IntVarP(&opts.Padding, "padding", "p", opts.Padding, "empty pixels between sprites")
	f.IntVar(&opts.MaxSize, "max", pipeline.DefaultMaxSize, "maximum atlas width and height")
	f.BoolVar(&opts.PowerOfTwo, "pot", false, "power-of-two atlas dimensions")
	f.StringVar(&opts.Ordering, "ordering", pack.DefaultOrdering, "sprite order before packing")
	f.BoolVar(&opts.Trim, "trim", false, "remove transparent borders from sprites")

	return cmd
}
