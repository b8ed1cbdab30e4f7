package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/api"
	"github.com/matzehuels/stackpip/pkg/config"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Long: `Serve the resolver API until interrupted.

  GET  /healthz   liveness and build information
  POST /v1/sort   order a dependency map
  POST /v1/plan   resolve the task queue of an inline task file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.NewServer(c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	return cmd
}
