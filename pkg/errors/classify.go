package errors

import (
	"context"
	"errors"
	"io/fs"

	"github.com/matzehuels/stackpip/pkg/integrations"
	"github.com/matzehuels/stackpip/pkg/lock"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/report"
	"github.com/matzehuels/stackpip/pkg/requirement"
	"github.com/matzehuels/stackpip/pkg/toposort"
)

// Classify returns the code for err. An explicit *Error code wins; other
// errors are matched against the domain sentinels. Unknown errors are
// ErrCodeInternal, and nil has no code.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	if code := GetCode(err); code != "" {
		return code
	}
	var depErr *manifest.DependencyNotFoundError
	switch {
	case errors.As(err, &depErr):
		return ErrCodeDependencyNotFound
	case errors.Is(err, manifest.ErrTaskNotFound):
		return ErrCodeTaskNotFound
	case errors.Is(err, manifest.ErrDependencyCycle), errors.Is(err, toposort.ErrCycle):
		return ErrCodeDependencyCycle
	case errors.Is(err, manifest.ErrDuplicateTask):
		return ErrCodeInvalidManifest
	case errors.Is(err, toposort.ErrMissing):
		return ErrCodePackageNotFound
	case errors.Is(err, lock.ErrPinMismatch):
		return ErrCodeLockMismatch
	case errors.Is(err, lock.ErrInvalid):
		return ErrCodeInvalidLock
	case errors.Is(err, requirement.ErrInvalid), errors.Is(err, requirement.ErrMarker):
		return ErrCodeInvalidRequirement
	case errors.Is(err, report.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, integrations.ErrNotFound):
		return ErrCodePackageNotFound
	case errors.Is(err, integrations.ErrRateLimited):
		return ErrCodeRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.Is(err, integrations.ErrNetwork):
		return ErrCodeNetwork
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeFileNotFound
	}
	return ErrCodeInternal
}
