package manifest

import (
	"fmt"
	"slices"
)

// Manifest is the registry of all declared tasks plus the queue of tasks
// that will run, in order.
//
// A Manifest is not safe for concurrent use.
type Manifest struct {
	all         []*Task
	bySignature map[string]*Task
	queue       []*Task
	graph       *taskGraph
}

// New registers tasks in declaration order and queues all of them.
// Returns an error wrapping [ErrDuplicateTask] if two tasks share a
// signature, or a family base name collides with an unparametrized task.
func New(tasks []*Task) (*Manifest, error) {
	bySignature := make(map[string]*Task, len(tasks))
	plain := make(map[string]bool)
	families := make(map[string]bool)
	for _, t := range tasks {
		sig := t.Signature()
		if _, dup := bySignature[sig]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, sig)
		}
		bySignature[sig] = t
		if t.Parametrized() {
			families[t.Name] = true
		} else {
			plain[t.Name] = true
		}
		if plain[t.Name] && families[t.Name] {
			return nil, fmt.Errorf("%w: %s is both a task and a parametrized family", ErrDuplicateTask, t.Name)
		}
	}
	return &Manifest{
		all:         slices.Clone(tasks),
		bySignature: bySignature,
		queue:       slices.Clone(tasks),
	}, nil
}

// All returns every registered task in declaration order.
func (m *Manifest) All() []*Task { return slices.Clone(m.all) }

// Queue returns the tasks that will run, in order.
func (m *Manifest) Queue() []*Task { return slices.Clone(m.queue) }

// Len returns the number of queued tasks.
func (m *Manifest) Len() int { return len(m.queue) }

// Lookup returns the task with the given signature.
func (m *Manifest) Lookup(signature string) (*Task, bool) {
	t, ok := m.bySignature[signature]
	return t, ok
}

// Queued reports whether t is in the run queue.
func (m *Manifest) Queued(t *Task) bool { return slices.Contains(m.queue, t) }

// FilterByName keeps the queued tasks matching any of names, in the order
// the names are given. A name matches a task's signature, or every member
// of a family by base name. Names matching nothing are reported in a
// [*NotFoundError] and leave the queue unchanged.
func (m *Manifest) FilterByName(names []string) error {
	var (
		kept    []*Task
		missing []string
	)
	for _, name := range names {
		found := false
		for _, t := range m.queue {
			if t.Signature() == name || t.Name == name {
				found = true
				if !slices.Contains(kept, t) {
					kept = append(kept, t)
				}
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &NotFoundError{Names: missing}
	}
	m.queue = kept
	return nil
}

// FilterByPython keeps queued tasks targeting one of versions. Tasks that
// are not parametrized are kept.
func (m *Manifest) FilterByPython(versions []string) {
	m.queue = slices.DeleteFunc(m.queue, func(t *Task) bool {
		return t.Parametrized() && !slices.Contains(versions, t.Python)
	})
}

// FilterByTags keeps queued tasks carrying at least one of tags.
func (m *Manifest) FilterByTags(tags []string) {
	m.queue = slices.DeleteFunc(m.queue, func(t *Task) bool {
		return !slices.ContainsFunc(tags, t.HasTag)
	})
}

// FilterDefault keeps queued tasks marked as default. If no task is marked,
// the queue is left unchanged.
func (m *Manifest) FilterDefault() {
	if !slices.ContainsFunc(m.queue, func(t *Task) bool { return t.Default }) {
		return
	}
	m.queue = slices.DeleteFunc(m.queue, func(t *Task) bool { return !t.Default })
}

// AddDependencies replaces the queue with its dependency closure in
// execution order: every task appears after the tasks it requires, and
// queued tasks keep their relative order wherever requirements allow.
//
// Requiring a family base name requires all of its members. A requires
// entry naming no task fails with [*DependencyNotFoundError]; tasks that
// require each other fail with [*CycleError]. On error the queue is left
// unchanged.
func (m *Manifest) AddDependencies() error {
	g := newTaskGraph(m.all, m.queue)
	order, err := g.resolve()
	if err != nil {
		return err
	}
	m.graph = g
	m.queue = order
	return nil
}

// DirectDependencies returns the tasks t requires, with family names
// expanded to their members.
func (m *Manifest) DirectDependencies(t *Task) ([]*Task, error) {
	g := m.graph
	if g == nil {
		g = newTaskGraph(m.all, nil)
	}
	n, ok := g.byTask[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, t.Signature())
	}
	deps, err := g.Dependencies(n)
	if err != nil {
		return nil, err
	}
	var out []*Task
	for _, d := range deps {
		members := []*node{d}
		if d.kind == kindFamily {
			members = d.members
		}
		for _, mem := range members {
			if !slices.Contains(out, mem.task) {
				out = append(out, mem.task)
			}
		}
	}
	return out, nil
}

// Edge is a dependency between two tasks: From requires To.
type Edge struct {
	From, To *Task
}

// Edges returns the direct dependency edges among the queued tasks, in queue
// order. Requires naming unknown tasks are skipped.
func (m *Manifest) Edges() []Edge {
	var edges []Edge
	for _, t := range m.queue {
		deps, err := m.DirectDependencies(t)
		if err != nil {
			continue
		}
		for _, d := range deps {
			if m.Queued(d) {
				edges = append(edges, Edge{From: t, To: d})
			}
		}
	}
	return edges
}
