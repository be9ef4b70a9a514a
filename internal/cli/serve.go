package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/alluvial/internal/api"
)

const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for layout, rendering and override editing.

Overrides are kept in the store selected by --store. Use a redis:// or
mongodb:// store when several instances serve the same diagrams.`,
		Example: `  alluvial serve --addr :8080 --store redis://localhost:6379/0`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving %s on %s", StyleTitle.Render(appName), StyleValue.Render("http://"+addr))
			return api.New(runner, api.WithLogger(c.Logger)).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}
