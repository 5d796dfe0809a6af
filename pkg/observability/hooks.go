// Package observability lets callers watch atlas builds without tying the
// library to a metrics or tracing backend.
//
// Three hook sets exist: [PipelineHooks] for load/pack/encode stages,
// [CacheHooks] for layout and artifact cache traffic, and [HTTPHooks] for the
// server. Each defaults to a no-op and can be replaced once at startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//
// Library code reads the current set on every event:
//
//	observability.Pipeline().OnPackAttempt(ctx, "tree", 98, 98)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives atlas build events.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, inputs int)
	OnLoadComplete(ctx context.Context, sprites int, duration time.Duration, err error)

	// OnPackAttempt fires once per candidate atlas size.
	OnPackStart(ctx context.Context, packer string, sprites int)
	OnPackAttempt(ctx context.Context, packer string, width, height int)
	OnPackComplete(ctx context.Context, packer string, width, height, attempts int, duration time.Duration, err error)

	OnEncodeStart(ctx context.Context, formats []string)
	OnEncodeComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is "layout" or an artifact kind.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives request events from pkg/server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, int)                          {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnPackStart(context.Context, string, int)                  {}
func (NoopPipelineHooks) OnPackAttempt(context.Context, string, int, int)           {}
func (NoopPipelineHooks) OnPackComplete(context.Context, string, int, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnEncodeStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnEncodeComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one hook set. atomic.Pointer needs a concrete type, so the
// interface value is boxed.
type slot[H any] struct{ p atomic.Pointer[H] }

func (s *slot[H]) load(def H) H {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return def
}

func (s *slot[H]) store(h H) { s.p.Store(&h) }

var (
	pipelineSlot slot[PipelineHooks]
	cacheSlot    slot[CacheHooks]
	httpSlot     slot[HTTPHooks]
)

// SetPipelineHooks replaces the pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.store(h)
	}
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

func Pipeline() PipelineHooks { return pipelineSlot.load(NoopPipelineHooks{}) }

func Cache() CacheHooks { return cacheSlot.load(NoopCacheHooks{}) }

func HTTP() HTTPHooks { return httpSlot.load(NoopHTTPHooks{}) }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
