package api

import (
	"errors"
	"net/http"

	errs "github.com/matzehuels/stackpip/pkg/errors"
	"github.com/matzehuels/stackpip/pkg/manifest"
	"github.com/matzehuels/stackpip/pkg/toposort"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"error"`
	Cycle   []string  `json:"cycle,omitempty"`   // Set for DEPENDENCY_CYCLE
	Missing []string  `json:"missing,omitempty"` // Unknown task or node names
}

var statusByCode = map[errs.Code]int{
	errs.ErrCodeInvalidInput:       http.StatusBadRequest,
	errs.ErrCodeInvalidManifest:    http.StatusBadRequest,
	errs.ErrCodeInvalidRequirement: http.StatusBadRequest,
	errs.ErrCodeInvalidLock:        http.StatusBadRequest,
	errs.ErrCodeUnsupported:        http.StatusBadRequest,
	errs.ErrCodeTaskNotFound:       http.StatusNotFound,
	errs.ErrCodeDependencyNotFound: http.StatusUnprocessableEntity,
	errs.ErrCodePackageNotFound:    http.StatusUnprocessableEntity,
	errs.ErrCodeDependencyCycle:    http.StatusUnprocessableEntity,
	errs.ErrCodeLockMismatch:       http.StatusUnprocessableEntity,
	errs.ErrCodeTimeout:            http.StatusGatewayTimeout,
}

// writeError classifies err and writes it with the matching status.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.Classify(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	resp := ErrorResponse{Code: code, Message: errs.UserMessage(err)}

	var (
		taskCycle  *manifest.CycleError
		nodeCycle  *toposort.CycleError[string]
		notFound   *manifest.NotFoundError
		depMissing *manifest.DependencyNotFoundError
		nodeMiss   *toposort.MissingError[string]
	)
	switch {
	case errors.As(err, &taskCycle):
		resp.Cycle = taskCycle.Cycle
	case errors.As(err, &nodeCycle):
		resp.Cycle = nodeCycle.Cycle
	case errors.As(err, &notFound):
		resp.Missing = notFound.Names
	case errors.As(err, &depMissing):
		resp.Missing = []string{depMissing.Name}
	case errors.As(err, &nodeMiss):
		resp.Missing = []string{nodeMiss.Node}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		resp.Message = "internal error"
	}
	writeJSON(w, status, resp)
}
