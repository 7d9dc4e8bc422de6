package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reveal/pkg/observability"
)

// tickLogEvery thins per-tick debug output.
const tickLogEvery = 50

// debugHooks logs pipeline, simulation, cache and HTTP events at debug
// level. It is registered by --verbose.
type debugHooks struct {
	logger *log.Logger
}

func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetSimulationHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load", "source", source)
}

func (h debugHooks) OnLoadComplete(_ context.Context, source string, nodes int, d time.Duration, err error) {
	h.logger.Debug("load done", "source", source, "nodes", nodes, "duration", d, "error", err)
}

func (h debugHooks) OnSettleStart(_ context.Context, nodes int) {
	h.logger.Debug("settle", "nodes", nodes)
}

func (h debugHooks) OnSettleComplete(_ context.Context, ticks int, d time.Duration, err error) {
	h.logger.Debug("settle done", "ticks", ticks, "duration", d, "error", err)
}

func (h debugHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render", "format", format)
}

func (h debugHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "bytes", size, "duration", d, "error", err)
}

func (h debugHooks) OnStart(_ context.Context, nodes, links int) {
	h.logger.Debug("simulation start", "nodes", nodes, "links", links)
}

func (h debugHooks) OnTick(_ context.Context, tick int, alpha float64) {
	if tick%tickLogEvery == 0 {
		h.logger.Debug("tick", "tick", tick, "alpha", alpha)
	}
}

func (h debugHooks) OnEnd(_ context.Context, ticks int, d time.Duration) {
	h.logger.Debug("simulation end", "ticks", ticks, "duration", d)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
