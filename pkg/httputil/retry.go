package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a failure worth another attempt. After, when
// positive, is the wait the server asked for and replaces the backoff delay
// for that attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff controls how often and how long [Retry] waits between attempts.
type Backoff struct {
	Attempts int           // Total calls, at least 1
	Delay    time.Duration // Wait before the second attempt, doubled after each
	MaxDelay time.Duration // Upper bound on any single wait; 0 means none
}

// DefaultBackoff is used for package index requests.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Retry calls fn until it succeeds, returns an error not wrapped in
// [RetryableError], or b.Attempts calls have failed. The last error is
// returned, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		if b.MaxDelay > 0 {
			wait = min(wait, b.MaxDelay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// RetryAfter parses a Retry-After header given in seconds. HTTP dates and
// malformed values yield 0.
func RetryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
