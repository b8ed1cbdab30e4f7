package cli

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpip/pkg/config"
	"github.com/matzehuels/stackpip/pkg/lock"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/taskfile"
)

// project is a loaded task file with its effective settings.
type project struct {
	file     *taskfile.File
	cfg      config.Config
	manifest *manifest.Manifest
}

// loadProject reads the task file given with -f and registers its tasks.
func (c *CLI) loadProject() (*project, error) {
	f, err := taskfile.Load(c.Taskfile)
	if err != nil {
		return nil, err
	}
	m, err := f.Manifest()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded task file", "path", c.Taskfile, "tasks", m.Len())
	return &project{file: f, cfg: f.Config(), manifest: m}, nil
}

// lock reads the project's lock file. A missing lock file yields nil, so
// only tasks that install nothing can succeed.
func (p *project) lock(c *CLI) (*lock.Lock, error) {
	path := p.file.LockfilePath()
	l, err := lock.Parse(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.Logger.Warn("no lock file", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded lock file", "path", path, "packages", len(l.Packages))
	return l, nil
}

// selectionFlags are the task selection flags shared by list, plan, run
// and graph.
type selectionFlags struct {
	tasks  []string
	python []string
	tags   []string
	noDeps bool
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&s.tasks, "task", "s", nil, "tasks to select by name or signature (default: tasks marked default)")
	cmd.Flags().StringSliceVarP(&s.python, "python", "p", nil, "only select tasks for these interpreter versions")
	cmd.Flags().StringSliceVarP(&s.tags, "tag", "t", nil, "only select tasks carrying one of these tags")
	cmd.Flags().BoolVar(&s.noDeps, "no-deps", false, "do not add required tasks")
}

func (s *selectionFlags) selection() manifest.Selection {
	return manifest.Selection{
		Names:  s.tasks,
		Python: s.python,
		Tags:   s.tags,
		NoDeps: s.noDeps,
	}
}

// selectTasks applies the flags to the project's manifest.
func (c *CLI) selectTasks(p *project, s *selectionFlags) error {
	done := timed(c.Logger, "Resolved task queue")
	if err := p.manifest.Select(s.selection()); err != nil {
		return err
	}
	done("tasks", p.manifest.Len())
	return nil
}
