// Package integrations provides HTTP clients for package index APIs.
//
// [Client] is the shared transport. It decodes JSON responses, retries
// transient failures with [httputil.Retry] and stores decoded responses in
// a [cache.Cache]. Index-specific clients embed it; see the pypi
// subpackage.
//
// Errors are classified with sentinels so callers can branch with errors.Is:
//
//   - [ErrNotFound]: the index answered 404
//   - [ErrNetwork]: connection failures and unexpected status codes
//   - [ErrRateLimited]: 429 responses that outlasted the retry policy
package integrations
