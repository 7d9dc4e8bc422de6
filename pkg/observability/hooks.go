// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; applications register
// implementations at startup. The defaults do nothing, so instrumentation
// never becomes a hard dependency of the simulation or the renderers.
//
// # Usage
//
//	func main() {
//	    observability.SetSimulationHooks(&mySimulationHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Emitting events:
//
//	observability.Pipeline().OnSettleStart(ctx, len(doc.Nodes))
//	// ... run the simulation ...
//	observability.Pipeline().OnSettleComplete(ctx, ticks, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the headless load, settle and render
// stages.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	OnSettleStart(ctx context.Context, nodeCount int)
	OnSettleComplete(ctx context.Context, ticks int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from a running force loop.
type SimulationHooks interface {
	// OnStart is called when a loop starts or a stopped simulation reheats.
	OnStart(ctx context.Context, nodeCount, linkCount int)

	// OnTick is called after every tick with the current alpha.
	OnTick(ctx context.Context, tick int, alpha float64)

	// OnEnd is called when alpha falls below the minimum and ticking stops.
	OnEnd(ctx context.Context, ticks int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnSettleStart(context.Context, int)                                  {}
func (NoopPipelineHooks) OnSettleComplete(context.Context, int, time.Duration, error)         {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnStart(context.Context, int, int)         {}
func (NoopSimulationHooks) OnTick(context.Context, int, float64)      {}
func (NoopSimulationHooks) OnEnd(context.Context, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// registry holds the process-wide hooks. Reads vastly outnumber writes:
// every tick and cache lookup reads, only startup writes.
type registry struct {
	mu         sync.RWMutex
	pipeline   PipelineHooks
	simulation SimulationHooks
	cache      CacheHooks
	http       HTTPHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{
		pipeline:   NoopPipelineHooks{},
		simulation: NoopSimulationHooks{},
		cache:      NoopCacheHooks{},
		http:       NoopHTTPHooks{},
	}
}

// set stores h in *slot unless h is nil.
func set[H comparable](slot *H, h H) {
	var zero H
	if h == zero {
		return
	}
	hooks.mu.Lock()
	*slot = h
	hooks.mu.Unlock()
}

func get[H any](slot *H) H {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return *slot
}

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) { set(&hooks.pipeline, h) }

// SetSimulationHooks registers simulation hooks. nil is ignored.
func SetSimulationHooks(h SimulationHooks) { set(&hooks.simulation, h) }

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) { set(&hooks.cache, h) }

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) { set(&hooks.http, h) }

func Pipeline() PipelineHooks     { return get(&hooks.pipeline) }
func Simulation() SimulationHooks { return get(&hooks.simulation) }
func Cache() CacheHooks           { return get(&hooks.cache) }
func HTTP() HTTPHooks             { return get(&hooks.http) }

// Reset restores the no-op hooks. Tests that register hooks call it in
// cleanup.
func Reset() {
	fresh := newRegistry()
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.pipeline, hooks.simulation = fresh.pipeline, fresh.simulation
	hooks.cache, hooks.http = fresh.cache, fresh.http
}
