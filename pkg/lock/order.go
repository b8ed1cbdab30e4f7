package lock

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/stackpip/pkg/environment"
	"github.com/matzehuels/stackpip/pkg/requirement"
	"github.com/matzehuels/stackpip/pkg/toposort"
)

// projectRoot stands for the requirement set being installed. It cannot
// collide with a normalized distribution name.
const projectRoot = "__project__"

// ErrPinMismatch is returned when a requirement pins a version other than
// the locked one.
var ErrPinMismatch = errors.New("requirement does not match lock")

// InstallOrder returns the locked packages needed by reqs, each after the
// packages it depends on. Requirements and dependencies whose markers do
// not hold in env are left out, and optional dependencies are only followed
// when an extra requesting them is active.
//
// A needed package missing from the lock fails with
// [*toposort.MissingError]; dependency cycles fail with
// [*toposort.CycleError].
func (l *Lock) InstallOrder(reqs []requirement.Requirement, env environment.Environment) ([]*Package, error) {
	p := &planner{lock: l, env: env, extras: make(map[string][]string)}
	roots, err := p.roots(reqs)
	if err != nil {
		return nil, err
	}
	if err := p.activateExtras(roots); err != nil {
		return nil, err
	}

	g := toposort.GraphFunc[string](func(name string) ([]string, error) {
		if name == projectRoot {
			return roots, nil
		}
		return p.dependencies(name)
	})
	names, err := toposort.Sort[string](g, projectRoot)
	if err != nil {
		return nil, err
	}
	out := make([]*Package, len(names))
	for i, name := range names {
		out[i] = l.byName[name]
	}
	return out, nil
}

type planner struct {
	lock   *Lock
	env    environment.Environment
	extras map[string][]string // package name to active extras
}

func (p *planner) roots(reqs []requirement.Requirement) ([]string, error) {
	var names []string
	for _, r := range reqs {
		ok, err := r.Applies(p.env.MarkerEnv(""))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		if !ok {
			continue
		}
		if pkg, found := p.lock.byName[r.Name]; found {
			if pin := r.Pin(); pin != "" && pin != pkg.Version {
				return nil, fmt.Errorf("%w: %s wants %s, locked %s", ErrPinMismatch, r.Name, pin, pkg.Version)
			}
		}
		p.addExtras(r.Name, r.Extras)
		if !slices.Contains(names, r.Name) {
			names = append(names, r.Name)
		}
	}
	return names, nil
}

func (p *planner) addExtras(name string, extras []string) bool {
	changed := false
	for _, e := range extras {
		if !slices.Contains(p.extras[name], e) {
			p.extras[name] = append(p.extras[name], e)
			changed = true
		}
	}
	return changed
}

// activateExtras propagates requested extras through the graph until no
// package gains a new one, so optional edges are known before sorting.
func (p *planner) activateExtras(roots []string) error {
	queue := slices.Clone(roots)
	queued := make(map[string]bool, len(roots))
	for _, r := range roots {
		queued[r] = true
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		queued[name] = false

		deps, err := p.applicable(name)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if p.addExtras(d.Name, d.Extras) && !queued[d.Name] {
				queue = append(queue, d.Name)
				queued[d.Name] = true
			}
		}
	}
	return nil
}

func (p *planner) dependencies(name string) ([]string, error) {
	if _, ok := p.lock.byName[name]; !ok {
		return nil, &toposort.MissingError[string]{Node: name}
	}
	deps, err := p.applicable(name)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, d := range deps {
		if !slices.Contains(names, d.Name) {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

// applicable returns the dependencies of a locked package that hold in the
// environment: required ones whose markers match, plus optional ones pulled
// in by an active extra. Unknown packages have no dependencies here; the
// sort reports them when reached.
func (p *planner) applicable(name string) ([]Dependency, error) {
	pkg, ok := p.lock.byName[name]
	if !ok {
		return nil, nil
	}
	wanted := make(map[string]bool)
	for _, extra := range p.extras[name] {
		for _, s := range pkg.Extras[extra] {
			r, err := requirement.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%s[%s]: %w", name, extra, err)
			}
			ok, err := r.Applies(p.env.MarkerEnv(extra))
			if err != nil {
				return nil, fmt.Errorf("%s[%s]: %w", name, extra, err)
			}
			if ok {
				wanted[r.Name] = true
			}
		}
	}

	var out []Dependency
	for _, d := range pkg.Dependencies {
		if d.Optional && !wanted[d.Name] {
			continue
		}
		if d.Markers != "" {
			ok, err := p.holds(d.Markers, p.extras[name])
			if err != nil {
				return nil, fmt.Errorf("%s -> %s: %w", name, d.Name, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// holds evaluates a marker with no extra and then with each active extra.
func (p *planner) holds(marker string, extras []string) (bool, error) {
	m, err := requirement.ParseMarker(marker)
	if err != nil {
		return false, err
	}
	for _, extra := range append([]string{""}, extras...) {
		ok, err := m.Evaluate(p.env.MarkerEnv(extra))
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
