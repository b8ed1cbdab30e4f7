package manifest

import (
	"errors"
	"slices"
	"testing"
)

func signatures(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Signature()
	}
	return out
}

func mustNew(t *testing.T, tasks ...*Task) *Manifest {
	t.Helper()
	m, err := New(tasks)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestTask_Signature(t *testing.T) {
	if got := (&Task{Name: "lint"}).Signature(); got != "lint" {
		t.Errorf("Signature() = %q, want %q", got, "lint")
	}
	if got := (&Task{Name: "tests", Python: "3.12"}).Signature(); got != "tests-3.12" {
		t.Errorf("Signature() = %q, want %q", got, "tests-3.12")
	}
}

func TestTask_RequiredNames(t *testing.T) {
	task := &Task{Name: "tests", Python: "3.11", Requires: []string{"build-{python}", "lint"}}
	want := []string{"build-3.11", "lint"}
	if got := task.RequiredNames(); !slices.Equal(got, want) {
		t.Errorf("RequiredNames() = %v, want %v", got, want)
	}
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New([]*Task{{Name: "a"}, {Name: "a"}})
	if !errors.Is(err, ErrDuplicateTask) {
		t.Errorf("New() error = %v, want ErrDuplicateTask", err)
	}

	_, err = New([]*Task{{Name: "a"}, {Name: "a", Python: "3.12"}})
	if !errors.Is(err, ErrDuplicateTask) {
		t.Errorf("New() error = %v, want ErrDuplicateTask for task/family clash", err)
	}
}

func TestManifest_Lookup(t *testing.T) {
	lint := &Task{Name: "lint"}
	tests312 := &Task{Name: "tests", Python: "3.12"}
	m := mustNew(t, lint, tests312)
	if err := m.Select(Selection{Names: []string{"lint"}, NoDeps: true}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		signature string
		want      *Task
	}{
		{"lint", lint},
		{"tests-3.12", tests312}, // registered but not queued
		{"tests", nil},           // family base name is not a signature
		{"docs", nil},
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.signature)
		if got != tt.want || ok != (tt.want != nil) {
			t.Errorf("Lookup(%q) = %v, %v, want %v", tt.signature, got, ok, tt.want)
		}
	}
}

func TestAddDependencies_Order(t *testing.T) {
	a := &Task{Name: "a", Requires: []string{"c", "b"}}
	b := &Task{Name: "b"}
	c := &Task{Name: "c"}
	d := &Task{Name: "d", Requires: []string{"e"}}
	e := &Task{Name: "e", Requires: []string{"c"}}
	m := mustNew(t, a, b, c, d, e)

	if err := m.FilterByName([]string{"a", "d"}); err != nil {
		t.Fatalf("FilterByName() error = %v", err)
	}
	if err := m.AddDependencies(); err != nil {
		t.Fatalf("AddDependencies() error = %v", err)
	}

	want := []string{"c", "b", "a", "e", "d"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestAddDependencies_OnlyClosureOfQueue(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "install", Requires: []string{"build"}},
		&Task{Name: "build"},
		&Task{Name: "docs", Requires: []string{"build"}},
		&Task{Name: "unrelated"},
	)
	if err := m.FilterByName([]string{"install"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDependencies(); err != nil {
		t.Fatal(err)
	}
	want := []string{"build", "install"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestAddDependencies_Family(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "build", Python: "3.11"},
		&Task{Name: "build", Python: "3.12"},
		&Task{Name: "publish", Requires: []string{"build"}},
	)
	if err := m.FilterByName([]string{"publish"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDependencies(); err != nil {
		t.Fatal(err)
	}
	want := []string{"build-3.11", "build-3.12", "publish"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestAddDependencies_PythonPlaceholder(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "build", Python: "3.11"},
		&Task{Name: "build", Python: "3.12"},
		&Task{Name: "tests", Python: "3.11", Requires: []string{"build-{python}"}},
		&Task{Name: "tests", Python: "3.12", Requires: []string{"build-{python}"}},
	)
	if err := m.FilterByName([]string{"tests-3.12"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDependencies(); err != nil {
		t.Fatal(err)
	}
	want := []string{"build-3.12", "tests-3.12"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestAddDependencies_NoDuplicates(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "base"},
		&Task{Name: "x", Requires: []string{"base"}},
		&Task{Name: "y", Requires: []string{"base", "x"}},
	)
	if err := m.AddDependencies(); err != nil {
		t.Fatal(err)
	}
	want := []string{"base", "x", "y"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestAddDependencies_MissingDependency(t *testing.T) {
	m := mustNew(t, &Task{Name: "a", Requires: []string{"ghost"}})
	before := signatures(m.Queue())

	err := m.AddDependencies()
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("AddDependencies() error = %v, want ErrTaskNotFound", err)
	}
	var dnf *DependencyNotFoundError
	if !errors.As(err, &dnf) {
		t.Fatalf("error type = %T, want *DependencyNotFoundError", err)
	}
	if dnf.Name != "ghost" || dnf.Task != "a" {
		t.Errorf("DependencyNotFoundError = %+v, want Task=a Name=ghost", dnf)
	}
	if got := signatures(m.Queue()); !slices.Equal(got, before) {
		t.Errorf("queue changed on error: %v, want %v", got, before)
	}
}

func TestAddDependencies_MissingDependencyOutsideSelection(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "ok"},
		&Task{Name: "broken", Requires: []string{"ghost"}},
	)
	if err := m.FilterByName([]string{"ok"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddDependencies(); err != nil {
		t.Errorf("AddDependencies() error = %v, want nil", err)
	}
}

func TestAddDependencies_Cycle(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "a", Requires: []string{"b"}},
		&Task{Name: "b", Requires: []string{"a"}},
	)
	err := m.AddDependencies()
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("AddDependencies() error = %v, want ErrDependencyCycle", err)
	}
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *CycleError", err)
	}
	if want := []string{"a", "b", "a"}; !slices.Equal(ce.Cycle, want) {
		t.Errorf("Cycle = %v, want %v", ce.Cycle, want)
	}
	if want := "tasks are in a dependency cycle: a -> b -> a"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAddDependencies_CycleThroughFamily(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "build", Python: "3.12", Requires: []string{"setup"}},
		&Task{Name: "setup", Requires: []string{"build"}},
	)
	if err := m.FilterByName([]string{"setup"}); err != nil {
		t.Fatal(err)
	}
	var ce *CycleError
	if err := m.AddDependencies(); !errors.As(err, &ce) {
		t.Fatalf("AddDependencies() error = %v, want *CycleError", err)
	}
	if want := []string{"setup", "build", "build-3.12", "setup"}; !slices.Equal(ce.Cycle, want) {
		t.Errorf("Cycle = %v, want %v", ce.Cycle, want)
	}
}

func TestAddDependencies_SelfLoop(t *testing.T) {
	m := mustNew(t, &Task{Name: "a", Requires: []string{"a"}})
	var ce *CycleError
	if err := m.AddDependencies(); !errors.As(err, &ce) {
		t.Fatalf("AddDependencies() error = %v, want *CycleError", err)
	}
	if want := []string{"a", "a"}; !slices.Equal(ce.Cycle, want) {
		t.Errorf("Cycle = %v, want %v", ce.Cycle, want)
	}
}

func TestFilterByName(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "lint"},
		&Task{Name: "tests", Python: "3.11"},
		&Task{Name: "tests", Python: "3.12"},
	)
	if err := m.FilterByName([]string{"tests", "lint"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"tests-3.11", "tests-3.12", "lint"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestFilterByName_NotFound(t *testing.T) {
	m := mustNew(t, &Task{Name: "lint"})
	err := m.FilterByName([]string{"lint", "nope", "nada"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("FilterByName() error = %v, want *NotFoundError", err)
	}
	if want := []string{"nope", "nada"}; !slices.Equal(nf.Names, want) {
		t.Errorf("Names = %v, want %v", nf.Names, want)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want queue unchanged", m.Len())
	}
}

func TestFilterByPython(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "lint"},
		&Task{Name: "tests", Python: "3.11"},
		&Task{Name: "tests", Python: "3.12"},
	)
	m.FilterByPython([]string{"3.12"})
	want := []string{"lint", "tests-3.12"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestFilterByTags(t *testing.T) {
	m := mustNew(t,
		&Task{Name: "a", Tags: []string{"ci"}},
		&Task{Name: "b", Tags: []string{"docs"}},
		&Task{Name: "c", Tags: []string{"ci", "docs"}},
	)
	m.FilterByTags([]string{"ci"})
	want := []string{"a", "c"}
	if got := signatures(m.Queue()); !slices.Equal(got, want) {
		t.Errorf("Queue() = %v, want %v", got, want)
	}
}

func TestFilterDefault(t *testing.T) {
	m := mustNew(t, &Task{Name: "a"}, &Task{Name: "b", Default: true})
	m.FilterDefault()
	if got := signatures(m.Queue()); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Queue() = %v, want [b]", got)
	}

	m = mustNew(t, &Task{Name: "a"}, &Task{Name: "b"})
	m.FilterDefault()
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 when nothing is default", m.Len())
	}
}

func TestDirectDependencies(t *testing.T) {
	build311 := &Task{Name: "build", Python: "3.11"}
	build312 := &Task{Name: "build", Python: "3.12"}
	lint := &Task{Name: "lint"}
	publish := &Task{Name: "publish", Requires: []string{"lint", "build", "build-3.11"}}
	m := mustNew(t, build311, build312, lint, publish)

	deps, err := m.DirectDependencies(publish)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"lint", "build-3.11", "build-3.12"}
	if got := signatures(deps); !slices.Equal(got, want) {
		t.Errorf("DirectDependencies() = %v, want %v", got, want)
	}
}

func TestEdges(t *testing.T) {
	a := &Task{Name: "a", Requires: []string{"b"}}
	b := &Task{Name: "b"}
	m := mustNew(t, a, b)
	if err := m.AddDependencies(); err != nil {
		t.Fatal(err)
	}
	edges := m.Edges()
	if len(edges) != 1 || edges[0].From != a || edges[0].To != b {
		t.Errorf("Edges() = %+v, want [a -> b]", edges)
	}
}

func TestManifest_Select(t *testing.T) {
	tasks := func() []*Task {
		return []*Task{
			{Name: "setup", Default: true},
			{Name: "lint", Tags: []string{"style"}},
			{Name: "tests", Python: "3.11", Requires: []string{"setup"}, Tags: []string{"ci"}},
			{Name: "tests", Python: "3.12", Requires: []string{"setup"}, Tags: []string{"ci"}},
		}
	}
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"defaults", Selection{}, []string{"setup"}},
		{"by name", Selection{Names: []string{"tests"}}, []string{"setup", "tests-3.11", "tests-3.12"}},
		{"by name and python", Selection{Names: []string{"tests"}, Python: []string{"3.12"}}, []string{"setup", "tests-3.12"}},
		{"by tag", Selection{Tags: []string{"ci"}}, []string{"setup", "tests-3.11", "tests-3.12"}},
		{"no deps", Selection{Names: []string{"tests-3.11"}, NoDeps: true}, []string{"tests-3.11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNew(t, tasks()...)
			if err := m.Select(tt.sel); err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got := signatures(m.Queue()); !slices.Equal(got, tt.want) {
				t.Errorf("queue = %v, want %v", got, tt.want)
			}
		})
	}
}
