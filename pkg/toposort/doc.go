// Package toposort produces lazy, stable topological orderings of dependency
// graphs.
//
// The main entry point is [LazyStableSort], which walks the closure of a root
// node depth-first and yields every node after all of its dependencies. Two
// properties distinguish it from a textbook topological sort:
//
//   - Lazy: a node is emitted at the first point something needs it, never
//     earlier. Nodes not reachable from the root are never looked up.
//   - Stable: siblings keep the order in which their dependent declared them,
//     unless a dependency edge forces otherwise.
//
// # Graphs
//
// A graph is anything implementing [Graph]. [Map] covers the common case of
// an in-memory adjacency map, and [GraphFunc] adapts a lookup function:
//
//	g := toposort.Map[string]{
//	    "app":  {"web", "db"},
//	    "web":  {"log"},
//	    "db":   {"log"},
//	    "log":  nil,
//	}
//	order, err := toposort.Sort(g, "app")
//	// order: [log web db]
//
// # Errors
//
// A node that reappears on its own ancestor path stops the walk with a
// [*CycleError] carrying the offending path. Lookup failures returned by the
// graph are passed through unchanged; [Map] reports unknown nodes as
// [*MissingError]. Nodes yielded before the error remain valid output.
package toposort
