package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpip/pkg/observability"
)

// debugHooks logs executor, cache and HTTP events at debug level.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l}
	observability.SetRunHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnRunStart(_ context.Context, runID string, tasks int) {
	h.logger.Debug("run started", "id", runID, "tasks", tasks)
}

func (h debugHooks) OnRunComplete(_ context.Context, runID string, failed int, d time.Duration) {
	h.logger.Debug("run finished", "id", runID, "failed", failed, "duration", d.Round(time.Millisecond))
}

func (h debugHooks) OnTaskStart(context.Context, string) {}

func (h debugHooks) OnTaskComplete(_ context.Context, task, status string, _ time.Duration, err error) {
	if err != nil {
		h.logger.Debug("task error", "task", task, "status", status, "err", err)
	}
}

func (h debugHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h debugHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h debugHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
