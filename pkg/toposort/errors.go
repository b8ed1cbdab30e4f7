package toposort

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is matched by every [*CycleError].
	ErrCycle = errors.New("dependency cycle")

	// ErrMissing is matched by every [*MissingError].
	ErrMissing = errors.New("missing dependency")
)

// CycleError reports a node that depends on itself, directly or transitively.
//
// Cycle lists the path from the first occurrence of the repeated node down to
// its second occurrence, so the first and last elements are equal. A self-loop
// on "a" is reported as [a a].
type CycleError[N comparable] struct {
	Cycle []N
}

func (e *CycleError[N]) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, joinNodes(e.Cycle, " -> "))
}

// Is reports whether target is [ErrCycle].
func (e *CycleError[N]) Is(target error) bool { return target == ErrCycle }

// MissingError reports a node that has no entry in a [Map].
type MissingError[N comparable] struct {
	Node N
}

func (e *MissingError[N]) Error() string {
	return fmt.Sprintf("%v: %v", ErrMissing, e.Node)
}

// Is reports whether target is [ErrMissing].
func (e *MissingError[N]) Is(target error) bool { return target == ErrMissing }

func joinNodes[N comparable](nodes []N, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, sep)
}
