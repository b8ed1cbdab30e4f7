package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateTask is returned by [New] when two tasks share a signature.
	ErrDuplicateTask = errors.New("duplicate task")

	// ErrTaskNotFound is matched by [*NotFoundError] and [*DependencyNotFoundError].
	ErrTaskNotFound = errors.New("task not found")

	// ErrDependencyCycle is matched by [*CycleError].
	ErrDependencyCycle = errors.New("tasks are in a dependency cycle")
)

// NotFoundError reports selection names that match no registered task.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrTaskNotFound, strings.Join(e.Names, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrTaskNotFound }

// DependencyNotFoundError reports a task whose requires list names a task
// that does not exist.
type DependencyNotFoundError struct {
	Task string // Signature of the requiring task
	Name string // The unknown name
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (required by %s)", ErrTaskNotFound, e.Name, e.Task)
}

func (e *DependencyNotFoundError) Unwrap() error { return ErrTaskNotFound }

// CycleError reports tasks that depend on each other. Cycle holds task
// signatures along the cycle, with the repeated task at both ends.
type CycleError struct {
	Cycle []string
	Err   error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDependencyCycle, strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDependencyCycle}
	}
	return []error{ErrDependencyCycle, e.Err}
}
