package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/stackpip/pkg/cache"
	"github.com/matzehuels/stackpip/pkg/httputil"
	"github.com/matzehuels/stackpip/pkg/observability"
)

// Client is the transport shared by index clients. Decoded responses are
// kept in a cache backend under a per-index namespace.
//
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
	backoff   httputil.Backoff
}

// NewClient creates a Client storing responses in backend under namespace
// for ttl. headers are sent with every request. A nil backend disables
// caching.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		backoff:   httputil.DefaultBackoff,
	}
}

// SetBackoff replaces the retry policy for subsequent requests.
func (c *Client) SetBackoff(b httputil.Backoff) { c.backoff = b }

// Cached decodes the value stored under key into v. On a miss, or when
// refresh is set, fetch runs under the retry policy and the value it
// populated is written back. Failed fetches are never stored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	full := c.namespace + key
	hooks := observability.Cache()
	if !refresh {
		data, ok, err := c.cache.Get(ctx, full)
		if err == nil && ok && json.Unmarshal(data, v) == nil {
			hooks.OnCacheHit(ctx, full)
			return nil
		}
	}
	hooks.OnCacheMiss(ctx, full)

	if err := httputil.Retry(ctx, c.backoff, fetch); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if c.cache.Set(ctx, full, data, c.ttl) == nil {
		hooks.OnCacheSet(ctx, full, len(data))
	}
	return nil
}

// Get requests url and decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: ErrRateLimited, After: httputil.RetryAfter(resp.Header)}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
