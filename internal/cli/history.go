package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/report"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			store, err := c.newStore(ctx, p.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Println(renderTable(
				[]string{"Run", "Started", "Duration", "OK", "Failed", "Skipped"},
				historyRows(reports),
			))
			printNextStep("Details", appName+" history show <run>")
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show (0 for all)")
	cmd.AddCommand(c.historyShowCommand())
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run>",
		Short: "Show the tasks of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			store, err := c.newStore(ctx, p.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			printKeyValue("Run", r.ID)
			printKeyValue("Task file", r.Taskfile)
			printKeyValue("Started", r.StartedAt.Local().Format(time.DateTime))
			printKeyValue("Duration", r.Duration.Round(time.Millisecond).String())
			fmt.Println()
			for _, t := range r.Tasks {
				fmt.Printf("%s  %s\n", statusLabel(t.Status), StyleHighlight.Render(t.Task))
				if t.Reason != "" {
					printDetail("%s", t.Reason)
				}
				for _, s := range t.Steps {
					printDetail("%s %s==%s", actionIcon(s.Action), s.Name, s.Version)
				}
			}
			return nil
		},
	}
}

func historyRows(reports []*report.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(r.Success),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		})
	}
	return rows
}
