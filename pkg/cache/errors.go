package cache

import "errors"

// ErrBackend wraps failures of the storage behind a cache, as opposed to
// misses.
var ErrBackend = errors.New("cache backend error")
