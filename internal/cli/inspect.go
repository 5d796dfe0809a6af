package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	descio "github.com/matzehuels/atlaspack/pkg/io"
)

// inspectCommand creates the inspect command for reading descriptors.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect [descriptor]",
		Short: "List the sprites in an atlas descriptor",
		Long: `List the sprites in an atlas descriptor (.xml or .json).

With -i the list opens in an interactive browser; otherwise a table is
printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descio.Import(args[0])
			if err != nil {
				return err
			}

			if interactive {
				p := tea.NewProgram(NewFrameListModel(d), tea.WithContext(cmd.Context()))
				_, err := p.Run()
				return err
			}

			printKeyValue("Texture", d.Texture)
			if d.Width > 0 {
				printKeyValue("Size", fmt.Sprintf("%dx%d", d.Width, d.Height))
			}
			printKeyValue("Sprites", fmt.Sprintf("%d", len(d.Sprites)))
			fmt.Println(frameTable(d.Sprites, -1).Render())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse sprites interactively")
	return cmd
}
