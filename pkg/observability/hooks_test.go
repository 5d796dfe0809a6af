package observability

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks
	attempts atomic.Int32
	misses   atomic.Int32
}

func (c *countingHooks) OnPackAttempt(context.Context, string, int, int) { c.attempts.Add(1) }
func (c *countingHooks) OnCacheMiss(context.Context, string)             { c.misses.Add(1) }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Pipeline().OnPackComplete(ctx, "tree", 128, 128, 2, time.Second, nil)
	Cache().OnCacheSet(ctx, "image", 1024)
	HTTP().OnError(ctx, "POST", "localhost", "/v1/atlases", nil)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()
	h := &countingHooks{}

	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetPipelineHooks(nil)

	Pipeline().OnPackAttempt(ctx, "tree", 98, 98)
	Pipeline().OnPackAttempt(ctx, "tree", 100, 98)
	Cache().OnCacheMiss(ctx, "layout")

	if got := h.attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if got := h.misses.Load(); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if HTTP() != HTTPHooks(h) {
		t.Errorf("HTTP() = %T, want *countingHooks", HTTP())
	}

	Reset()
	Pipeline().OnPackAttempt(ctx, "tree", 1, 1)
	if got := h.attempts.Load(); got != 2 {
		t.Errorf("attempts after Reset = %d, want 2", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	h := &countingHooks{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetPipelineHooks(h)
		}()
		go func() {
			defer wg.Done()
			Pipeline().OnPackStart(ctx, "scan", 3)
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	h := NewLogHooks(logger)
	ctx := context.Background()
	h.OnPackAttempt(ctx, "scan", 64, 32)
	h.OnCacheMiss(ctx, "layout")
	h.OnResponse(ctx, "GET", "localhost", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"pack attempt", "packer=scan", "width=64", "cache miss", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
