package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/install"
	"github.com/matzehuels/stackpip/pkg/integrations/pypi"
	"github.com/matzehuels/stackpip/pkg/report"
)

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var (
		sel         selectionFlags
		stop        bool
		refresh     bool
		noCache     bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected tasks",
		Long: `Run the selected tasks and the tasks they require, in dependency order.

Each task's requirements are expanded through the lock file, distributions
already present in the environment are skipped, and artifact metadata is
fetched from the package index. A task whose required task failed is
skipped. The outcome is saved to the run history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.loadProject()
			if err != nil {
				return err
			}
			if interactive {
				names, ok, err := pickTasks(p.manifest.All())
				if err != nil {
					return err
				}
				if !ok || len(names) == 0 {
					printInfo("Nothing selected")
					return nil
				}
				sel.tasks = names
			}
			if err := c.selectTasks(p, &sel); err != nil {
				return err
			}
			if p.manifest.Len() == 0 {
				printWarning("No tasks selected")
				return nil
			}

			lck, err := p.lock(c)
			if err != nil {
				return err
			}
			backend, err := c.newCache(ctx, p.cfg, noCache)
			if err != nil {
				return err
			}
			defer backend.Close()

			client := pypi.NewClient(backend, p.cfg.CacheTTL.Duration, p.cfg.IndexURL)
			exec := install.NewExecutor(lck, p.file.Environment, client, install.NewRecorder(), c.Logger)
			exec.Workers = p.cfg.Workers
			exec.StopOnFirstError = p.cfg.StopOnFirstError || stop
			exec.Refresh = refresh

			res, err := exec.Run(ctx, p.manifest)
			if err != nil {
				return err
			}
			c.saveReport(ctx, p, res)

			printRunResult(res)
			if n := res.Failed(); n > 0 {
				return fmt.Errorf("%d of %d tasks failed", n, len(res.Tasks))
			}
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose tasks interactively")
	cmd.Flags().BoolVarP(&stop, "stop-on-first-error", "x", false, "skip remaining tasks after the first failure")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached index responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the index response cache")
	return cmd
}

// saveReport stores the run. Failures are logged, not returned: the run
// itself already happened.
func (c *CLI) saveReport(ctx context.Context, p *project, res *install.Result) {
	store, err := c.newStore(ctx, p.cfg)
	if err != nil {
		c.Logger.Warn("run history unavailable", "err", err)
		return
	}
	defer store.Close()
	if err := store.Save(ctx, report.FromResult(res, c.Taskfile)); err != nil {
		c.Logger.Warn("could not save run", "id", res.ID, "err", err)
		return
	}
	c.Logger.Debug("saved run", "id", res.ID)
}

func printRunResult(res *install.Result) {
	fmt.Println()
	for _, tr := range res.Tasks {
		fmt.Printf("%s  %s\n", statusLabel(tr.Status), StyleHighlight.Render(tr.Task))
		switch {
		case tr.Status != install.StatusSuccess:
			printDetail("%s", tr.Reason)
		case tr.Plan != nil:
			for _, s := range tr.Plan.Steps {
				printDetail("%s %s==%s", actionIcon(s.Action), s.Name, s.Version)
			}
		}
	}
	fmt.Println()

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped in %s",
		res.Count(install.StatusSuccess), res.Failed(), res.Count(install.StatusSkipped),
		res.Duration.Round(time.Millisecond))
	if res.OK() {
		printSuccess("%s", summary)
	} else {
		printError("%s", summary)
	}
	printDetail("Run %s", res.ID)
}

func actionIcon(a install.Action) string {
	switch a {
	case install.ActionSkip:
		return iconSkip
	case install.ActionBuild:
		return "build"
	}
	return iconArrow
}
