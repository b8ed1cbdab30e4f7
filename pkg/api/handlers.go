package api

import (
	"fmt"
	"net/http"

	"github.com/matzehuels/stackpip/pkg/environment"
	errs "github.com/matzehuels/stackpip/pkg/errors"
	"github.com/matzehuels/stackpip/pkg/lock"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/requirement"
	"github.com/matzehuels/stackpip/pkg/taskfile"
	"github.com/matzehuels/stackpip/pkg/toposort"
)

// SortRequest orders the nodes reachable from Root.
type SortRequest struct {
	Dependencies map[string][]string `json:"dependencies"`
	Root         string              `json:"root"`
	KeepRoot     bool                `json:"keep_root"`
}

// SortResponse lists nodes with every node after its dependencies.
type SortResponse struct {
	Order []string `json:"order"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Root == "" {
		s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "root is required"))
		return
	}

	var opts []toposort.Option
	if req.KeepRoot {
		opts = append(opts, toposort.WithRoot())
	}
	order, err := toposort.Sort(toposort.Map[string](req.Dependencies), req.Root, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if order == nil {
		order = []string{}
	}
	writeJSON(w, http.StatusOK, SortResponse{Order: order})
}

// PlanRequest selects tasks from an inline task file. When Lock holds
// poetry.lock content, each task's install order is included.
type PlanRequest struct {
	Taskfile string   `json:"taskfile"`
	Lock     string   `json:"lock,omitempty"`
	Tasks    []string `json:"tasks,omitempty"`
	Python   []string `json:"python,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	NoDeps   bool     `json:"no_deps,omitempty"`
}

// PlanResponse is the resolved queue.
type PlanResponse struct {
	Order []string      `json:"order"`
	Tasks []PlannedTask `json:"tasks"`
}

// PlannedTask is one queued task.
type PlannedTask struct {
	Signature string   `json:"signature"`
	Python    string   `json:"python,omitempty"`
	Requires  []string `json:"requires"`           // Queued tasks this one waits for
	Packages  []string `json:"packages,omitempty"` // name==version in install order
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	f, err := taskfile.Decode([]byte(req.Taskfile))
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, d := range f.Tasks {
		if d.Requirements != "" {
			s.writeError(w, errs.New(errs.ErrCodeUnsupported, "task %s: requirements files are not supported over the API", d.Name))
			return
		}
	}
	m, err := f.Manifest()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sel := manifest.Selection{Names: req.Tasks, Python: req.Python, Tags: req.Tags, NoDeps: req.NoDeps}
	if err := m.Select(sel); err != nil {
		s.writeError(w, err)
		return
	}

	var lck *lock.Lock
	if req.Lock != "" {
		if lck, err = lock.Decode([]byte(req.Lock)); err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInvalidLock, err, "decode lock"))
			return
		}
	}

	resp := PlanResponse{Order: []string{}, Tasks: []PlannedTask{}}
	env := f.Environment.WithDefaults()
	for _, t := range m.Queue() {
		pt := PlannedTask{Signature: t.Signature(), Python: t.Python, Requires: []string{}}
		deps, err := m.DirectDependencies(t)
		if err != nil {
			s.writeError(w, err)
			return
		}
		for _, d := range deps {
			if m.Queued(d) {
				pt.Requires = append(pt.Requires, d.Signature())
			}
		}
		if lck != nil {
			pkgs, err := packages(lck, t, env.ForPython(t.Python))
			if err != nil {
				s.writeError(w, fmt.Errorf("task %s: %w", t.Signature(), err))
				return
			}
			pt.Packages = pkgs
		}
		resp.Order = append(resp.Order, pt.Signature)
		resp.Tasks = append(resp.Tasks, pt)
	}
	writeJSON(w, http.StatusOK, resp)
}

func packages(l *lock.Lock, t *manifest.Task, env environment.Environment) ([]string, error) {
	reqs := make([]requirement.Requirement, 0, len(t.Install))
	for _, s := range t.Install {
		req, err := requirement.Parse(s)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	order, err := l.InstallOrder(reqs, env)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(order))
	for i, p := range order {
		out[i] = p.String()
	}
	return out, nil
}
