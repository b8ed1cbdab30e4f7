package toposort

// walk is the ordered set of ancestors between the root and the node being
// expanded. The explicit stack in LazyStableSort pushes a node when it starts
// expanding and pops it once all its dependencies are flushed, so a sibling
// branch only ever sees the shared prefix, never another sibling's extension.
type walk[N comparable] struct {
	nodes []N
	index map[N]int
}

func newWalk[N comparable]() *walk[N] {
	return &walk[N]{index: make(map[N]int)}
}

func (w *walk[N]) push(n N) {
	w.index[n] = len(w.nodes)
	w.nodes = append(w.nodes, n)
}

func (w *walk[N]) pop() N {
	last := len(w.nodes) - 1
	n := w.nodes[last]
	w.nodes = w.nodes[:last]
	delete(w.index, n)
	return n
}

func (w *walk[N]) contains(n N) bool {
	_, ok := w.index[n]
	return ok
}

// cycle returns the path from n's position on the walk to the end, closed by
// n again.
func (w *walk[N]) cycle(n N) []N {
	start := w.index[n]
	out := make([]N, 0, len(w.nodes)-start+1)
	out = append(out, w.nodes[start:]...)
	return append(out, n)
}

func (w *walk[N]) len() int { return len(w.nodes) }
