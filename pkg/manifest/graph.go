package manifest

import (
	"errors"

	"github.com/matzehuels/stackpip/pkg/toposort"
)

type nodeKind int

const (
	kindTask nodeKind = iota
	// kindFamily groups every parametrization of one base name.
	kindFamily
	// kindRoot is the sentinel whose dependencies are the run queue.
	kindRoot
)

// node is the resolver's view of a task. Pointers are compared by identity,
// so two nodes never collide even when they print the same.
type node struct {
	kind    nodeKind
	task    *Task   // kindTask
	name    string  // kindFamily: base name
	members []*node // kindFamily: members in registration order
}

func (n *node) String() string {
	switch n.kind {
	case kindTask:
		return n.task.Signature()
	case kindFamily:
		return n.name
	default:
		return "<queue>"
	}
}

// taskGraph translates declared requires into [toposort.Graph] lookups.
// Requires are resolved only when a task is expanded, so a broken task that
// nothing selected cannot fail the run.
type taskGraph struct {
	bySignature map[string]*node
	byTask      map[*Task]*node
	root        *node
}

func newTaskGraph(all, queue []*Task) *taskGraph {
	g := &taskGraph{
		bySignature: make(map[string]*node, len(all)),
		byTask:      make(map[*Task]*node, len(all)),
	}
	for _, t := range all {
		n := &node{kind: kindTask, task: t}
		g.bySignature[t.Signature()] = n
		g.byTask[t] = n
	}
	for _, t := range all {
		if !t.Parametrized() {
			continue
		}
		family, ok := g.bySignature[t.Name]
		if !ok {
			family = &node{kind: kindFamily, name: t.Name}
			g.bySignature[t.Name] = family
		}
		if family.kind == kindFamily {
			family.members = append(family.members, g.byTask[t])
		}
	}

	g.root = &node{kind: kindRoot}
	for _, t := range queue {
		g.root.members = append(g.root.members, g.byTask[t])
	}
	return g
}

// Dependencies implements [toposort.Graph].
func (g *taskGraph) Dependencies(n *node) ([]*node, error) {
	switch n.kind {
	case kindRoot, kindFamily:
		return n.members, nil
	}
	names := n.task.RequiredNames()
	deps := make([]*node, 0, len(names))
	for _, name := range names {
		dep, ok := g.bySignature[name]
		if !ok {
			return nil, &DependencyNotFoundError{Task: n.task.Signature(), Name: name}
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// resolve runs the lazy stable sort from the queue root and returns the
// tasks in execution order, without family placeholders.
func (g *taskGraph) resolve() ([]*Task, error) {
	var out []*Task
	for n, err := range toposort.LazyStableSort[*node](g, g.root) {
		if err != nil {
			return nil, translate(err)
		}
		if n.kind == kindTask {
			out = append(out, n.task)
		}
	}
	return out, nil
}

func translate(err error) error {
	var ce *toposort.CycleError[*node]
	if errors.As(err, &ce) {
		names := make([]string, len(ce.Cycle))
		for i, n := range ce.Cycle {
			names[i] = n.String()
		}
		return &CycleError{Cycle: names, Err: err}
	}
	return err
}
