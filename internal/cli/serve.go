package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlaspack/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		cacheURL   string
		maxUpload  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the atlas HTTP API",
		Long: `Run the atlas HTTP API.

Packed atlases are kept in the configured cache for 24 hours. Use a Redis
cache (--cache redis://...) to share them between several instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("cache") {
				cfg.Cache.URL = cacheURL
			}
			// Stored atlases live in the cache, so it cannot be disabled here.
			cfg.Cache.Disabled = false

			runner, err := c.newRunner(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner, nil, loggerFromContext(ctx).WithPrefix("http"))
			srv.MaxUpload = maxUpload

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file")
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.StringVar(&cacheURL, "cache", "", "cache URL for layouts and stored atlases (redis://...)")
	f.Int64Var(&maxUpload, "max-upload", server.DefaultMaxUpload, "largest accepted upload in bytes")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
