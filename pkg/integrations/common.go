package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/stackpip/pkg/buildinfo"
	"github.com/matzehuels/stackpip/pkg/requirement"
)

const httpTimeout = 10 * time.Second

// UserAgent identifies index requests.
var UserAgent = "stackpip/" + buildinfo.Get().Version

var (
	// ErrNotFound is returned when a project or release doesn't exist in the index.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the index keeps answering 429.
	ErrRateLimited = errors.New("rate limited by index")
)

// NewHTTPClient creates an HTTP client with a standard timeout for index requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a distribution name to its PEP 503 canonical
// form, as used in index URLs and cache keys.
func NormalizePkgName(name string) string {
	return requirement.NormalizeName(name)
}
