// Package cli implements the alluvial command-line interface.
//
// This package provides commands for laying out and rendering flow diagrams,
// inspecting and editing their persisted overrides, and serving the HTTP
// API. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, JSON, PDF, or PNG diagrams
//   - layout: Write the computed geometry as JSON
//   - normalize: Clean up a flow document
//   - overrides: Show, reset or edit a diagram's persisted overrides
//   - store: Inspect the override store
//   - serve: Run the HTTP API
//
// # Logging
//
// Logs go to stderr. --verbose (-v) adds pipeline stages and store traffic,
// --quiet (-q) keeps only warnings, and --log-format switches between text,
// logfmt and json. Loggers travel through context.Context.
//
// # Example
//
//	import "github.com/matzehuels/alluvial/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// parseLogFormat maps a --log-format value to a formatter.
func parseLogFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return log.TextFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	}
	return 0, fmt.Errorf("unknown log format %q (must be text, logfmt or json)", s)
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered 3 file(s) (41ms)".
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(fmt.Sprintf("%s (%s)", msg, elapsed), keyvals...)
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default when a command runs without one.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
