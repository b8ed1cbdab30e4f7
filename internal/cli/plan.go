package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/environment"
	"github.com/matzehuels/stackpip/pkg/lock"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/requirement"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the task queue and install order without running it",
		Long: `Resolve the selected tasks and their requirements, then print the
queue in execution order. When a lock file is present, each task's locked
distributions are listed in install order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			if err := c.selectTasks(p, &sel); err != nil {
				return err
			}
			lck, err := p.lock(c)
			if err != nil {
				return err
			}

			env := p.file.Environment.WithDefaults()
			fmt.Println(StyleTitle.Render("Task queue"))
			for i, t := range p.manifest.Queue() {
				if err := printPlannedTask(p.manifest, t, i+1, lck, env); err != nil {
					return err
				}
			}
			if p.manifest.Len() == 0 {
				printWarning("No tasks selected")
				return nil
			}
			fmt.Println()
			printNextStep("Run it", runHint(&sel))
			return nil
		},
	}
	sel.register(cmd)
	return cmd
}

func printPlannedTask(m *manifest.Manifest, t *manifest.Task, n int, lck *lock.Lock, env environment.Environment) error {
	line := fmt.Sprintf("%2d. %s", n, StyleHighlight.Render(t.Signature()))
	deps, err := m.DirectDependencies(t)
	if err != nil {
		return err
	}
	var after []string
	for _, d := range deps {
		if m.Queued(d) {
			after = append(after, d.Signature())
		}
	}
	if len(after) > 0 {
		line += StyleDim.Render(" after " + strings.Join(after, ", "))
	}
	fmt.Println(line)

	if lck == nil || len(t.Install) == 0 {
		return nil
	}
	reqs := make([]requirement.Requirement, 0, len(t.Install))
	for _, s := range t.Install {
		r, err := requirement.Parse(s)
		if err != nil {
			return err
		}
		reqs = append(reqs, r)
	}
	tenv := env.ForPython(t.Python)
	order, err := lck.InstallOrder(reqs, tenv)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Signature(), err)
	}
	for _, pkg := range order {
		if tenv.Has(pkg.Name, pkg.Version) {
			printDetail("%s %s (installed)", iconSkip, pkg)
			continue
		}
		printDetail("%s %s", iconArrow, pkg)
	}
	return nil
}

// runHint rebuilds the run command line for the current selection.
func runHint(s *selectionFlags) string {
	parts := []string{appName, "run"}
	for _, t := range s.tasks {
		parts = append(parts, "-s", t)
	}
	for _, p := range s.python {
		parts = append(parts, "-p", p)
	}
	for _, t := range s.tags {
		parts = append(parts, "-t", t)
	}
	if s.noDeps {
		parts = append(parts, "--no-deps")
	}
	return strings.Join(parts, " ")
}
