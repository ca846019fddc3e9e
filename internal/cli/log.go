// Package cli implements the poolsynth command-line interface.
//
// # Commands
//
// The main commands are:
//   - generate: Render and write a dataset
//   - plan: Show split sizes and background frames without rendering
//   - config: Print the effective configuration as TOML
//   - checkpoint: Inspect or clear the resume ledger
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. During
// generation a [observability.GenerationHooks] implementation turns split and
// frame events into log lines, or into the --tui progress view.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/poolsynth/pkg/observability"
)

// stderr is where the logger and the progress view write.
var stderr io.Writer = os.Stderr

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Generated train: 70 frames (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Log Hooks
// =============================================================================

// logHooks reports generation progress as log lines: one line per tenth of
// a split, one on completion and one per failed frame.
type logHooks struct {
	logger *log.Logger
	split  *progress
	count  int
	seen   int
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnSplitStart(_ context.Context, split string, count int) {
	h.split = newProgress(h.logger)
	h.count = count
	h.seen = 0
}

func (h *logHooks) OnFrameComplete(_ context.Context, ev observability.FrameEvent) {
	if ev.Err != nil {
		h.logger.Error("frame failed", "split", ev.Split, "index", ev.Index, "err", ev.Err)
		return
	}
	h.seen++
	step := max(h.count/10, 1)
	if h.seen%step == 0 && h.seen < h.count {
		h.logger.Info("progress", "split", ev.Split, "done", fmt.Sprintf("%d/%d", h.seen, h.count))
	}
}

func (h *logHooks) OnSplitComplete(_ context.Context, s observability.SplitSummary) {
	msg := fmt.Sprintf("Generated %s: %d frames, %d labels", s.Split, s.Generated+s.Resumed, s.Labels)
	if s.Resumed > 0 {
		msg += fmt.Sprintf(" (%d resumed)", s.Resumed)
	}
	if h.split == nil {
		h.logger.Info(msg)
		return
	}
	h.split.done(msg)
}
