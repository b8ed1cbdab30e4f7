package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingHooks struct {
	NoopCacheHooks
	mu   sync.Mutex
	hits []string
}

func (h *countingHooks) OnCacheHit(_ context.Context, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits = append(h.hits, key)
}

type runRecorder struct{ NoopRunHooks }
type httpRecorder struct{ NoopHTTPHooks }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Run().OnRunStart(ctx, "run-1", 3)
	Run().OnTaskComplete(ctx, "tests-3.12", "success", time.Second, nil)
	Cache().OnCacheSet(ctx, "pypi:release:idna:3.6", 1024)
	HTTP().OnResponse(ctx, "GET", "pypi.org", "/pypi/idna/3.6/json", 200, time.Second)

	if _, ok := Run().(NoopRunHooks); !ok {
		t.Errorf("Run() = %T, want NoopRunHooks", Run())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestRegistry(t *testing.T) {
	Reset()
	defer Reset()

	cache := &countingHooks{}
	run := &runRecorder{}
	http := &httpRecorder{}
	SetCacheHooks(cache)
	SetRunHooks(run)
	SetHTTPHooks(http)

	Cache().OnCacheHit(context.Background(), "pypi:release:idna:3.6")
	if len(cache.hits) != 1 {
		t.Errorf("hits = %v, want one", cache.hits)
	}
	if Run() != RunHooks(run) || HTTP() != HTTPHooks(http) {
		t.Error("registered hooks not returned")
	}

	SetCacheHooks(nil)
	if Cache() != CacheHooks(cache) {
		t.Error("SetCacheHooks(nil) replaced the registered hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("after Reset, Cache() = %T", Cache())
	}
}

func TestConcurrentAccess(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				SetCacheHooks(&countingHooks{})
			}
			Cache().OnCacheMiss(context.Background(), "k")
		}()
	}
	wg.Wait()
}
