// Package errors gives stackpip failures a machine-readable [Code].
//
// Domain packages return plain sentinel and typed errors. Input handling
// (task files, API requests) returns an [*Error] with an explicit code,
// and [Classify] maps everything else to a code at the edges: the CLI
// prefixes messages with it and the API turns it into an HTTP status.
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "task %q: empty name", name)
//	err = errors.Wrap(errors.ErrCodeInvalidManifest, cause, "read %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidRequirement Code = "INVALID_REQUIREMENT"
	ErrCodeInvalidLock        Code = "INVALID_LOCK"
	ErrCodeInvalidPackage     Code = "INVALID_PACKAGE"

	ErrCodeTaskNotFound       Code = "TASK_NOT_FOUND"
	ErrCodeDependencyNotFound Code = "DEPENDENCY_NOT_FOUND"
	ErrCodeDependencyCycle    Code = "DEPENDENCY_CYCLE"
	ErrCodeLockMismatch       Code = "LOCK_MISMATCH"

	ErrCodeNotFound        Code = "NOT_FOUND" // Stored runs
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var allCodes = []Code{
	ErrCodeInvalidInput, ErrCodeInvalidManifest, ErrCodeInvalidRequirement, ErrCodeInvalidLock, ErrCodeInvalidPackage,
	ErrCodeTaskNotFound, ErrCodeDependencyNotFound, ErrCodeDependencyCycle, ErrCodeLockMismatch,
	ErrCodeNotFound, ErrCodePackageNotFound, ErrCodeFileNotFound,
	ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited,
	ErrCodeInternal, ErrCodeUnsupported,
}

// Error carries a Code alongside a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err's chain holds an *Error with code.
func Is(err error, code Code) bool { return code != "" && GetCode(err) == code }

// UserMessage returns err's text without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
