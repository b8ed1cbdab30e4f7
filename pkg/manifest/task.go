// Package manifest holds the registry of declared install tasks and the queue
// of tasks selected to run.
//
// Tasks may be parametrized by interpreter version. All parametrizations of
// one task share a base name and form a family: requiring the base name means
// requiring every member. [Manifest.AddDependencies] expands the queue with
// the dependency closure of the selected tasks using [toposort] and fails on
// unknown names or cycles.
package manifest

import (
	"slices"
	"strings"
)

// Task is one declared unit of install work.
type Task struct {
	Name        string   // Base name shared by all parametrizations
	Python      string   // Interpreter version this instance targets ("" if not parametrized)
	Description string   // Human-readable summary
	Requires    []string // Task names or signatures this task needs first; "{python}" expands to Python
	Install     []string // PEP 508 requirement strings to install
	Tags        []string // Free-form selection tags
	Default     bool     // Selected when no explicit selection is given
}

// Signature returns the unique identifier of the task: the base name for
// unparametrized tasks, "name-python" otherwise.
func (t *Task) Signature() string {
	if t.Python == "" {
		return t.Name
	}
	return t.Name + "-" + t.Python
}

// Parametrized reports whether the task is one member of a family.
func (t *Task) Parametrized() bool { return t.Python != "" }

// HasTag reports whether the task carries tag.
func (t *Task) HasTag(tag string) bool { return slices.Contains(t.Tags, tag) }

// RequiredNames returns Requires with "{python}" placeholders expanded.
func (t *Task) RequiredNames() []string {
	names := make([]string, len(t.Requires))
	for i, r := range t.Requires {
		names[i] = strings.ReplaceAll(r, "{python}", t.Python)
	}
	return names
}

func (t *Task) String() string { return t.Signature() }
