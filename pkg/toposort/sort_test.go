package toposort

import (
	"errors"
	"slices"
	"testing"
)

func stabilityGraph() Map[string] {
	return Map[string]{
		"a":    {"c", "b"},
		"b":    {},
		"c":    {},
		"d":    {"e"},
		"e":    {"c"},
		"root": {"a", "d"},
	}
}

func TestSort_Stable(t *testing.T) {
	got, err := Sort(stabilityGraph(), "root", WithRoot())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	want := []string{"c", "b", "a", "e", "d", "root"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestSort_DropRoot(t *testing.T) {
	got, err := Sort(stabilityGraph(), "root")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	want := []string{"c", "b", "a", "e", "d"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
	if slices.Contains(got, "root") {
		t.Error("Sort() output contains dropped root")
	}
}

func TestSort_RootLastWhenKept(t *testing.T) {
	got, err := Sort(stabilityGraph(), "d", WithRoot())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if got[len(got)-1] != "d" {
		t.Errorf("last element = %q, want %q", got[len(got)-1], "d")
	}
	count := 0
	for _, n := range got {
		if n == "d" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("root appears %d times, want 1", count)
	}
}

func TestSort_UnreachableNodesIgnored(t *testing.T) {
	g := stabilityGraph()
	g["f"] = []string{"b"}

	got, err := Sort(g, "root", WithRoot())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	want := []string{"c", "b", "a", "e", "d", "root"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestSort_DependencyOverridesPreference(t *testing.T) {
	g := stabilityGraph()
	g["c"] = []string{"b"}

	got, err := Sort(g, "root", WithRoot())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if slices.Index(got, "b") > slices.Index(got, "c") {
		t.Errorf("Sort() = %v, want b before c", got)
	}
	want := []string{"b", "c", "a", "e", "d", "root"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestSort_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		graph Map[string]
		root  string
		want  []string
	}{
		{"two nodes", Map[string]{"a": {"b"}, "b": {"a"}}, "a", []string{"a", "b", "a"}},
		{"self loop", Map[string]{"a": {"a"}}, "a", []string{"a", "a"}},
		{"below root", Map[string]{"r": {"x"}, "x": {"y"}, "y": {"z"}, "z": {"x"}}, "r", []string{"x", "y", "z", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sort(tt.graph, tt.root)
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("Sort() error = %v, want ErrCycle", err)
			}
			var ce *CycleError[string]
			if !errors.As(err, &ce) {
				t.Fatalf("Sort() error type = %T, want *CycleError[string]", err)
			}
			if !slices.Equal(ce.Cycle, tt.want) {
				t.Errorf("Cycle = %v, want %v", ce.Cycle, tt.want)
			}
		})
	}
}

func TestSort_CycleMessage(t *testing.T) {
	_, err := Sort(Map[string]{"a": {"b"}, "b": {"a"}}, "a")
	want := "dependency cycle: a -> b -> a"
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %v, want %q", err, want)
	}
}

func TestSort_Missing(t *testing.T) {
	_, err := Sort(Map[string]{"a": {"ghost"}}, "a")
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("Sort() error = %v, want ErrMissing", err)
	}
	var me *MissingError[string]
	if !errors.As(err, &me) {
		t.Fatalf("Sort() error type = %T, want *MissingError[string]", err)
	}
	if me.Node != "ghost" {
		t.Errorf("Node = %q, want %q", me.Node, "ghost")
	}
}

func TestSort_MissingOnlyWhenReached(t *testing.T) {
	g := Map[string]{
		"root":   {"a"},
		"a":      {},
		"broken": {"ghost"},
	}
	got, err := Sort(g, "root")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !slices.Equal(got, []string{"a"}) {
		t.Errorf("Sort() = %v, want [a]", got)
	}
}

func TestSort_SharedSubtree(t *testing.T) {
	g := Map[string]{
		"root": {"a", "b"},
		"a":    {"c"},
		"b":    {"c"},
		"c":    {},
	}
	got, err := Sort(g, "root")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	want := []string{"c", "a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestSort_Deterministic(t *testing.T) {
	g := Map[string]{
		"root": {"m", "k", "z", "a"},
		"m":    {"x", "y"},
		"k":    {"y", "q"},
		"z":    {"q", "x"},
		"a":    {},
		"x":    {"q"},
		"y":    {},
		"q":    {},
	}
	first, err := Sort(g, "root")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	for range 20 {
		again, err := Sort(g, "root")
		if err != nil {
			t.Fatalf("Sort() error = %v", err)
		}
		if !slices.Equal(first, again) {
			t.Fatalf("Sort() = %v, then %v", first, again)
		}
	}
}

func TestSort_TopologicalValidity(t *testing.T) {
	g := Map[string]{
		"root":  {"app", "cli", "docs"},
		"app":   {"web", "db", "log"},
		"cli":   {"app", "flags"},
		"docs":  {},
		"web":   {"http", "log"},
		"db":    {"log", "pool"},
		"http":  {"log"},
		"pool":  {},
		"log":   {},
		"flags": {},
	}
	got, err := Sort(g, "root")
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}

	pos := make(map[string]int, len(got))
	for i, n := range got {
		if _, dup := pos[n]; dup {
			t.Fatalf("node %q appears twice in %v", n, got)
		}
		pos[n] = i
	}
	for _, n := range got {
		for _, dep := range g[n] {
			if pos[dep] >= pos[n] {
				t.Errorf("%q (index %d) precedes its dependency %q (index %d)", n, pos[n], dep, pos[dep])
			}
		}
	}
	if len(got) != len(g)-1 {
		t.Errorf("Sort() returned %d nodes, want %d", len(got), len(g)-1)
	}
}

func TestSort_EmptyRoot(t *testing.T) {
	got, err := Sort(Map[string]{"root": nil}, "root", WithRoot())
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if !slices.Equal(got, []string{"root"}) {
		t.Errorf("Sort() = %v, want [root]", got)
	}
}

func TestLazyStableSort_PartialOutputBeforeCycle(t *testing.T) {
	g := Map[string]{
		"root": {"ok", "bad"},
		"ok":   {},
		"bad":  {"bad"},
	}
	var got []string
	var gotErr error
	for n, err := range LazyStableSort(g, "root") {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, n)
	}
	if !slices.Equal(got, []string{"ok"}) {
		t.Errorf("yielded %v before error, want [ok]", got)
	}
	if !errors.Is(gotErr, ErrCycle) {
		t.Errorf("error = %v, want ErrCycle", gotErr)
	}
}

func TestLazyStableSort_LooksUpOnDemand(t *testing.T) {
	adj := stabilityGraph()
	var looked []string
	g := GraphFunc[string](func(n string) ([]string, error) {
		looked = append(looked, n)
		return adj.Dependencies(n)
	})

	for n, err := range LazyStableSort[string](g, "root") {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == "c" {
			break
		}
	}
	want := []string{"root", "a", "c"}
	if !slices.Equal(looked, want) {
		t.Errorf("looked up %v, want %v", looked, want)
	}
}

type node struct{ name string }

func TestSort_PointerNodesByIdentity(t *testing.T) {
	root := &node{"root"}
	a, b := &node{"same"}, &node{"same"}
	g := Map[*node]{root: {a, b}, a: nil, b: nil}

	got, err := Sort(g, root)
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Sort() = %v, want [a b] by identity", got)
	}
}

func TestMap_With(t *testing.T) {
	g := Map[string]{"a": nil}
	g2 := g.With("root", []string{"a"})
	if _, ok := g["root"]; ok {
		t.Error("With() mutated the receiver")
	}
	if deps := g2["root"]; !slices.Equal(deps, []string{"a"}) {
		t.Errorf("With() root deps = %v, want [a]", deps)
	}
}
