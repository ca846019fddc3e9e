// Package observability provides hooks for following dataset generation.
//
// The generator reports split and frame events through [GenerationHooks]
// without depending on any particular consumer. The CLI registers a logging
// implementation by default and a progress view when --tui is set; tests
// register recorders.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGenerationHooks(&progressHooks{})
//	    // ... run generation
//	}
//
// The generator calls hooks to emit events:
//
//	observability.Generation().OnSplitStart(ctx, "train", 700)
//	// ... render and export frames ...
//	observability.Generation().OnFrameComplete(ctx, event)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generation Hooks
// =============================================================================

// FrameEvent describes one finished (or failed) frame.
type FrameEvent struct {
	Split      string
	Index      int
	Labels     int
	Background bool
	Resumed    bool
	Duration   time.Duration
	Err        error
}

// SplitSummary describes one finished split.
type SplitSummary struct {
	Split      string
	Planned    int
	Generated  int
	Resumed    int
	Background int
	Labels     int
	Duration   time.Duration
}

// GenerationHooks receives events from the dataset generator.
type GenerationHooks interface {
	// OnSplitStart is called before the first frame of a split.
	OnSplitStart(ctx context.Context, split string, count int)

	// OnFrameComplete is called after every frame, including skipped and
	// failed ones.
	OnFrameComplete(ctx context.Context, ev FrameEvent)

	// OnSplitComplete is called after the last frame of a split.
	OnSplitComplete(ctx context.Context, s SplitSummary)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnSplitStart(context.Context, string, int)     {}
func (NoopGenerationHooks) OnFrameComplete(context.Context, FrameEvent)   {}
func (NoopGenerationHooks) OnSplitComplete(context.Context, SplitSummary) {}

// =============================================================================
// Fan-out
// =============================================================================

// Multi forwards every event to each of hooks in order. Nil entries are
// skipped.
type Multi []GenerationHooks

func (m Multi) OnSplitStart(ctx context.Context, split string, count int) {
	for _, h := range m {
		if h != nil {
			h.OnSplitStart(ctx, split, count)
		}
	}
}

func (m Multi) OnFrameComplete(ctx context.Context, ev FrameEvent) {
	for _, h := range m {
		if h != nil {
			h.OnFrameComplete(ctx, ev)
		}
	}
}

func (m Multi) OnSplitComplete(ctx context.Context, s SplitSummary) {
	for _, h := range m {
		if h != nil {
			h.OnSplitComplete(ctx, s)
		}
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generationHooks GenerationHooks = NoopGenerationHooks{}
	hooksMu         sync.RWMutex
)

// SetGenerationHooks registers custom generation hooks.
// This should be called once at application startup before generating.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Reset restores the no-op default.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generationHooks = NoopGenerationHooks{}
}
