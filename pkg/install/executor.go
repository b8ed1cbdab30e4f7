package install

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackpip/pkg/environment"
	"github.com/matzehuels/stackpip/pkg/integrations/pypi"
	"github.com/matzehuels/stackpip/pkg/lock"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/observability"
	"github.com/matzehuels/stackpip/pkg/requirement"
)

// DefaultWorkers bounds concurrent index requests per task.
const DefaultWorkers = 8

// Status is the outcome of one task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TaskResult is the outcome of one queued task.
type TaskResult struct {
	Task     string        `json:"task"`
	Python   string        `json:"python,omitempty"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"` // Why the task was skipped or failed
	Plan     *Plan         `json:"plan,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Result is the outcome of a whole run.
type Result struct {
	ID       string        `json:"id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Tasks    []TaskResult  `json:"tasks"`
}

// Count returns the number of tasks with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the number of failed tasks.
func (r *Result) Failed() int { return r.Count(StatusFailed) }

// OK reports whether every task succeeded.
func (r *Result) OK() bool { return r.Count(StatusSuccess) == len(r.Tasks) }

// Executor runs task queues.
//
// Fields may be changed after [NewExecutor] and before the first Run.
type Executor struct {
	Lock      *lock.Lock
	Env       environment.Environment
	Fetcher   Fetcher // Nil skips index lookups
	Installer Installer
	Logger    *log.Logger

	Workers          int
	StopOnFirstError bool
	Refresh          bool // Bypass cached index responses
}

// NewExecutor creates an executor. A nil lock is treated as empty, a nil
// installer records plans, and a nil logger uses log.Default().
func NewExecutor(l *lock.Lock, env environment.Environment, f Fetcher, inst Installer, logger *log.Logger) *Executor {
	if l == nil {
		l = &lock.Lock{}
	}
	if inst == nil {
		inst = NewRecorder()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		Lock:      l,
		Env:       env.WithDefaults(),
		Fetcher:   f,
		Installer: inst,
		Logger:    logger,
		Workers:   DefaultWorkers,
	}
}

// Run executes the manifest's queue in order. Task failures are reported
// in the result; the returned error is non-nil only when ctx is done.
func (e *Executor) Run(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	queue := m.Queue()
	res := &Result{ID: uuid.NewString(), Started: time.Now()}
	hooks := observability.Run()
	hooks.OnRunStart(ctx, res.ID, len(queue))

	r := &run{
		exec:      e,
		manifest:  m,
		status:    make(map[*manifest.Task]Status, len(queue)),
		installed: make(map[string]map[string]string),
	}
	for _, t := range queue {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(res.Started)
			hooks.OnRunComplete(ctx, res.ID, res.Failed(), res.Duration)
			return res, err
		}
		tr := r.task(ctx, t)
		r.status[t] = tr.Status
		res.Tasks = append(res.Tasks, tr)
	}

	res.Duration = time.Since(res.Started)
	hooks.OnRunComplete(ctx, res.ID, res.Failed(), res.Duration)
	e.Logger.Info("run finished",
		"id", res.ID,
		"success", res.Count(StatusSuccess),
		"failed", res.Failed(),
		"skipped", res.Count(StatusSkipped),
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

type run struct {
	exec     *Executor
	manifest *manifest.Manifest
	status   map[*manifest.Task]Status
	stopped  bool

	// installed tracks what earlier tasks put into each interpreter.
	installed map[string]map[string]string
}

func (r *run) task(ctx context.Context, t *manifest.Task) TaskResult {
	sig := t.Signature()
	tr := TaskResult{Task: sig, Python: t.Python}

	if r.stopped {
		tr.Status, tr.Reason = StatusSkipped, "stopped after an earlier failure"
		r.exec.Logger.Warn("skipping task", "task", sig, "reason", tr.Reason)
		return tr
	}
	if dep, ok := r.blockedBy(t); !ok {
		tr.Status, tr.Reason = StatusSkipped, fmt.Sprintf("required task %s did not succeed", dep)
		r.exec.Logger.Warn("skipping task", "task", sig, "reason", tr.Reason)
		return tr
	}

	hooks := observability.Run()
	hooks.OnTaskStart(ctx, sig)
	start := time.Now()
	r.exec.Logger.Info("running task", "task", sig)

	plan, err := r.plan(ctx, t)
	if err == nil {
		err = r.exec.Installer.Install(ctx, plan)
	}
	tr.Duration = time.Since(start)
	tr.Plan = plan

	if err != nil {
		tr.Status, tr.Reason, tr.Err = StatusFailed, err.Error(), err
		if r.exec.StopOnFirstError && !errors.Is(err, context.Canceled) {
			r.stopped = true
		}
		r.exec.Logger.Error("task failed", "task", sig, "err", err)
	} else {
		tr.Status = StatusSuccess
		r.record(t, plan)
		r.exec.Logger.Info("task done",
			"task", sig,
			"install", len(plan.Pending()),
			"skip", len(plan.Steps)-len(plan.Pending()),
			"duration", tr.Duration.Round(time.Millisecond))
	}
	hooks.OnTaskComplete(ctx, sig, string(tr.Status), tr.Duration, tr.Err)
	return tr
}

// blockedBy reports the first required task that already ran without
// succeeding. Required tasks outside the queue, or queued later, count as
// satisfied.
func (r *run) blockedBy(t *manifest.Task) (string, bool) {
	deps, err := r.manifest.DirectDependencies(t)
	if err != nil {
		return "", true
	}
	for _, d := range deps {
		if s, ran := r.status[d]; ran && s != StatusSuccess {
			return d.Signature(), false
		}
	}
	return "", true
}

func (r *run) env(t *manifest.Task) environment.Environment {
	env := r.exec.Env.ForPython(t.Python)
	installed := maps.Clone(env.Installed)
	if installed == nil {
		installed = make(map[string]string)
	}
	maps.Copy(installed, r.installed[env.Python])
	env.Installed = installed
	return env
}

func (r *run) plan(ctx context.Context, t *manifest.Task) (*Plan, error) {
	env := r.env(t)
	plan := &Plan{Task: t.Signature(), Python: env.Python}

	reqs := make([]requirement.Requirement, 0, len(t.Install))
	for _, s := range t.Install {
		req, err := requirement.Parse(s)
		if err != nil {
			return plan, err
		}
		reqs = append(reqs, req)
	}

	order, err := r.exec.Lock.InstallOrder(reqs, env)
	if err != nil {
		return plan, err
	}

	var missing []*lock.Package
	for _, p := range order {
		if !env.Has(p.Name, p.Version) {
			missing = append(missing, p)
		}
	}

	releases := make(map[*lock.Package]int, len(missing))
	var fetched []*pypi.Release
	if r.exec.Fetcher != nil && len(missing) > 0 {
		rels, err := fetchReleases(ctx, r.exec.Fetcher, missing, r.exec.Workers, r.exec.Refresh)
		if err != nil {
			return plan, err
		}
		for i, p := range missing {
			releases[p] = i
		}
		fetched = rels
	}

	for _, p := range order {
		if env.Has(p.Name, p.Version) {
			plan.Steps = append(plan.Steps, Step{Name: p.Name, Version: p.Version, Action: ActionSkip})
			continue
		}
		var rel *pypi.Release
		if i, ok := releases[p]; ok {
			rel = fetched[i]
		}
		plan.Steps = append(plan.Steps, newStep(p, rel))
	}
	return plan, nil
}

func (r *run) record(t *manifest.Task, plan *Plan) {
	python := r.exec.Env.ForPython(t.Python).Python
	if r.installed[python] == nil {
		r.installed[python] = make(map[string]string)
	}
	for _, s := range plan.Pending() {
		r.installed[python][s.Name] = s.Version
	}
}
