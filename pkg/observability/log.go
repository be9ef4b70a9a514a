package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline, store and HTTP events as debug log lines.
// Failures are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l, prefixed with "hooks".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnInputDropped(_ context.Context, kind, reason string) {
	h.logger.Debug("input dropped", "kind", kind, "reason", reason)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount, edgeCount int) {
	h.logger.Debug("layout start", "nodes", nodeCount, "edges", edgeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	h.done("layout", d, err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
}

func (h *LogHooks) OnRecordLoad(_ context.Context, record string, found bool) {
	h.logger.Debug("record load", "record", record, "found", found)
}

func (h *LogHooks) OnRecordFallback(_ context.Context, record string, err error) {
	h.logger.Warn("record unreadable, using empty", "record", record, "err", err)
}

func (h *LogHooks) OnRecordSave(_ context.Context, record string, size int) {
	h.logger.Debug("record save", "record", record, "bytes", size)
}

func (h *LogHooks) OnRecordWriteError(_ context.Context, record string, err error) {
	h.logger.Warn("record write failed", "record", record, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) done(stage string, d time.Duration, err error, keyvals ...any) {
	keyvals = append(keyvals, "took", d.Round(time.Microsecond))
	if err != nil {
		h.logger.Warn(stage+" failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(stage+" complete", keyvals...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
