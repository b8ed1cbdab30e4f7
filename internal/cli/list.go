package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/manifest"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared tasks",
		Long:  `List every task in the task file. Tasks that the selection flags would queue are marked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			if err := c.selectTasks(p, &sel); err != nil {
				return err
			}
			fmt.Println(renderTable(
				[]string{"", "Task", "Python", "Requires", "Tags", "Description"},
				taskRows(p.manifest),
			))
			printDetail("%d tasks, %d selected", len(p.manifest.All()), p.manifest.Len())
			return nil
		},
	}
	sel.register(cmd)
	return cmd
}

// taskRows renders every registered task, marking queued ones.
func taskRows(m *manifest.Manifest) [][]string {
	var rows [][]string
	for _, t := range m.All() {
		mark := ""
		if m.Queued(t) {
			mark = iconInfo
		}
		python := t.Python
		if python == "" {
			python = "—"
		}
		desc := t.Description
		if t.Default {
			desc = "(default) " + desc
		}
		rows = append(rows, []string{mark, t.Signature(), python, joinOrDash(t.RequiredNames()), joinOrDash(t.Tags), desc})
	}
	return rows
}
