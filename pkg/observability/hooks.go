// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about diagram
// computation, override persistence and API requests. Libraries never depend
// on a particular metrics backend; they only call the registered hooks.
//
// # Usage
//
// Register hooks at application startup. [LogHooks] reports every event
// to a charmbracelet/log logger at debug level:
//
//	func main() {
//	    hooks := observability.NewLogHooks(logger)
//	    observability.SetPipelineHooks(hooks)
//	    observability.SetStoreHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, nodes, edges)
//	// ... compute ...
//	observability.Pipeline().OnLayoutComplete(ctx, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the diagram pipeline.
type PipelineHooks interface {
	// OnInputDropped records an input node or edge that was discarded.
	OnInputDropped(ctx context.Context, kind, reason string)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount, edgeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from override persistence.
type StoreHooks interface {
	// OnRecordLoad records a successful read; found is false for absent records.
	OnRecordLoad(ctx context.Context, record string, found bool)

	// OnRecordFallback records a failed read that fell back to an empty record.
	OnRecordFallback(ctx context.Context, record string, err error)

	// OnRecordSave records a successful write.
	OnRecordSave(ctx context.Context, record string, size int)

	// OnRecordWriteError records a failed write. In-memory state is kept.
	OnRecordWriteError(ctx context.Context, record string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnInputDropped(context.Context, string, string)                   {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRecordLoad(context.Context, string, bool)        {}
func (NoopStoreHooks) OnRecordFallback(context.Context, string, error)   {}
func (NoopStoreHooks) OnRecordSave(context.Context, string, int)         {}
func (NoopStoreHooks) OnRecordWriteError(context.Context, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set. Reads never block.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	pipelineHooks = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	storeHooks    = slot[StoreHooks]{noop: NoopStoreHooks{}}
	httpHooks     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.set(h)
	}
}

// SetStoreHooks registers store hooks. nil is ignored.
func SetStoreHooks(h StoreHooks) {
	if h != nil {
		storeHooks.set(h)
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Store returns the registered store hooks.
func Store() StoreHooks { return storeHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineHooks.reset()
	storeHooks.reset()
	httpHooks.reset()
}
