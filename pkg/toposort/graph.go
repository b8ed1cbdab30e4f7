package toposort

// Graph supplies the direct dependencies of a node.
//
// The returned slice is ordered: its order is the caller's preference among
// siblings and is preserved in the output wherever dependency edges allow.
// Implementations must not change their answers while a sort is running.
type Graph[N comparable] interface {
	Dependencies(n N) ([]N, error)
}

// Map is an adjacency map from each node to its ordered dependencies.
// Looking up a node that is not a key returns a [*MissingError].
type Map[N comparable] map[N][]N

// Dependencies implements [Graph].
func (m Map[N]) Dependencies(n N) ([]N, error) {
	deps, ok := m[n]
	if !ok {
		return nil, &MissingError[N]{Node: n}
	}
	return deps, nil
}

// With returns a copy of m with root mapped to deps. It is the usual way to
// attach a synthetic root to an existing map without mutating it.
func (m Map[N]) With(root N, deps []N) Map[N] {
	out := make(Map[N], len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[root] = deps
	return out
}

// GraphFunc adapts a lookup function to [Graph].
type GraphFunc[N comparable] func(n N) ([]N, error)

// Dependencies implements [Graph].
func (f GraphFunc[N]) Dependencies(n N) ([]N, error) { return f(n) }
