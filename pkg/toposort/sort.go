package toposort

import "iter"

type options struct {
	keepRoot bool
}

// Option configures [LazyStableSort] and [Sort].
type Option func(*options)

// WithRoot keeps the root in the output as its last element. By default the
// root is dropped, which suits synthetic roots that only group the real
// starting nodes.
func WithRoot() Option {
	return func(o *options) { o.keepRoot = true }
}

// frame is one node under expansion and the index of its next dependency.
type frame[N comparable] struct {
	node N
	deps []N
	next int
}

// LazyStableSort returns an iterator over a topological ordering of root and
// everything reachable from it through g.
//
// The walk is depth-first: dependencies of a node are expanded in the order
// g returns them, and a node is yielded once every dependency has been
// yielded. A node reached a second time through another path contributes
// nothing further; its first, deepest expansion fixed its position. A node
// reached again while it is still on the current path is a cycle, reported
// as a [*CycleError]. Errors from g are yielded unchanged. After an error the
// iterator stops; nodes yielded before it are still correctly ordered.
//
// Each call to the returned iterator performs a fresh walk with its own
// state, so ranging over it twice yields the same sequence.
func LazyStableSort[N comparable](g Graph[N], root N, opts ...Option) iter.Seq2[N, error] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(N, error) bool) {
		var zero N
		visited := make(map[N]bool)
		path := newWalk[N]()

		rootDeps, err := g.Dependencies(root)
		if err != nil {
			yield(zero, err)
			return
		}
		visited[root] = true
		path.push(root)
		stack := []*frame[N]{{node: root, deps: rootDeps}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.next == len(top.deps) {
				stack = stack[:len(stack)-1]
				path.pop()
				if top.node == root && !o.keepRoot && path.len() == 0 {
					continue
				}
				if !yield(top.node, nil) {
					return
				}
				continue
			}

			dep := top.deps[top.next]
			top.next++

			if path.contains(dep) {
				yield(zero, &CycleError[N]{Cycle: path.cycle(dep)})
				return
			}
			if visited[dep] {
				continue
			}

			deps, err := g.Dependencies(dep)
			if err != nil {
				yield(zero, err)
				return
			}
			visited[dep] = true
			path.push(dep)
			stack = append(stack, &frame[N]{node: dep, deps: deps})
		}
	}
}

// Sort collects [LazyStableSort] into a slice. On error it returns the nodes
// yielded so far together with the error.
func Sort[N comparable](g Graph[N], root N, opts ...Option) ([]N, error) {
	var out []N
	for n, err := range LazyStableSort(g, root, opts...) {
		if err != nil {
			return out, err
		}
		out = append(out, n)
	}
	return out, nil
}
