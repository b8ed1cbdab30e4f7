// Package observability lets libraries emit events without knowing who
// listens.
//
// The install executor, the index client and its cache call the hooks
// returned by [Run], [HTTP] and [Cache]. Until an implementation is
// registered these are no-ops; the CLI registers logging hooks when run
// with --verbose:
//
//	observability.SetCacheHooks(myHooks)
//	defer observability.Reset()
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// RunHooks receives events from the install executor.
type RunHooks interface {
	OnRunStart(ctx context.Context, runID string, tasks int)
	OnRunComplete(ctx context.Context, runID string, failed int, duration time.Duration)

	OnTaskStart(ctx context.Context, task string)
	OnTaskComplete(ctx context.Context, task, status string, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes of cached index responses.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives package index requests. OnError is called when no
// response arrived at all.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopRunHooks struct{}

func (NoopRunHooks) OnRunStart(context.Context, string, int)                              {}
func (NoopRunHooks) OnRunComplete(context.Context, string, int, time.Duration)            {}
func (NoopRunHooks) OnTaskStart(context.Context, string)                                  {}
func (NoopRunHooks) OnTaskComplete(context.Context, string, string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook implementation, falling back to noop.
type slot[H any] struct {
	p    atomic.Pointer[H]
	noop H
}

func (s *slot[H]) get() H {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[H]) set(h H) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	runSlot   = slot[RunHooks]{noop: NoopRunHooks{}}
	cacheSlot = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot  = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetRunHooks registers h. A nil h is ignored.
func SetRunHooks(h RunHooks) { runSlot.set(h) }

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

func Run() RunHooks     { return runSlot.get() }
func Cache() CacheHooks { return cacheSlot.get() }
func HTTP() HTTPHooks   { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	runSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
