// Package httputil retries package index requests.
//
// Callers wrap transient failures in [RetryableError]; [Retry] repeats the
// call with doubling delays and returns anything else at once. A rate
// limited response can carry the server's Retry-After hint:
//
//	err := httputil.Retry(ctx, httputil.DefaultBackoff, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    if resp.StatusCode == http.StatusTooManyRequests {
//	        return &httputil.RetryableError{Err: errLimited, After: httputil.RetryAfter(resp.Header)}
//	    }
//	    ...
//	})
package httputil
