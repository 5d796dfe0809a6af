package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnLoadStart(_ context.Context, inputs int) {
	h.Logger.Debug("load start", "inputs", inputs)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, sprites int, d time.Duration, err error) {
	h.Logger.Debug("load done", "sprites", sprites, "duration", d, "err", err)
}

func (h *LogHooks) OnPackStart(_ context.Context, packer string, sprites int) {
	h.Logger.Debug("pack start", "packer", packer, "sprites", sprites)
}

func (h *LogHooks) OnPackAttempt(_ context.Context, packer string, width, height int) {
	h.Logger.Debug("pack attempt", "packer", packer, "width", width, "height", height)
}

func (h *LogHooks) OnPackComplete(_ context.Context, packer string, width, height, attempts int, d time.Duration, err error) {
	h.Logger.Debug("pack done", "packer", packer, "width", width, "height", height,
		"attempts", attempts, "duration", d, "err", err)
}

func (h *LogHooks) OnEncodeStart(_ context.Context, formats []string) {
	h.Logger.Debug("encode start", "formats", formats)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("encode done", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
