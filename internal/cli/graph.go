package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/install"
	"github.com/matzehuels/stackpip/pkg/render"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		sel      selectionFlags
		output   string
		detailed bool
		runID    string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the task dependency graph",
		Long: `Draw the selected tasks and what they require as a Graphviz graph.

The format follows the output file extension: .dot writes DOT source, .svg
renders in-process. Without -o, DOT source is written to stdout. With --run,
nodes are colored by their outcome in that run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			if err := c.selectTasks(p, &sel); err != nil {
				return err
			}

			opts := render.Options{Detailed: detailed}
			if runID != "" {
				store, err := c.newStore(ctx, p.cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				r, err := store.Get(ctx, runID)
				if err != nil {
					return fmt.Errorf("run %s: %w", runID, err)
				}
				opts.Status = make(map[string]install.Status, len(r.Tasks))
				for _, t := range r.Tasks {
					opts.Status[t.Task] = t.Status
				}
			}

			dot := render.ToDOT(p.manifest, opts)
			if output == "" {
				fmt.Print(dot)
				return nil
			}

			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				if data, err = render.RenderSVG(ctx, dot); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported output format %q (use .dot or .svg)", ext)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote graph of %d tasks", p.manifest.Len())
			printFile(output)
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot or .svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include interpreter and requirement count in labels")
	cmd.Flags().StringVar(&runID, "run", "", "color nodes by the outcome of this run")
	return cmd
}
