// Package dataset drives dataset generation: it sizes the splits, prepares
// the output tree and runs the per-frame randomize, render, annotate and
// export loop.
//
// # Usage
//
//	gen, err := dataset.NewGenerator(cfg, dataset.Options{
//	    Renderer:   render.NewRaster(),
//	    Discoverer: scene.DiscovererFor(cfg),
//	    Logger:     logger,
//	})
//	if err != nil {
//	    return err
//	}
//	manifest, err := gen.Run(ctx)
//
// Frames are generated one at a time. Each frame draws from its own seeded
// generator (see [randomize.FrameRand]), so a resumed run produces the same
// images as an uninterrupted one.
package dataset

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/poolsynth/pkg/annotate"
	"github.com/matzehuels/poolsynth/pkg/cache"
	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/errors"
	"github.com/matzehuels/poolsynth/pkg/export"
	"github.com/matzehuels/poolsynth/pkg/observability"
	"github.com/matzehuels/poolsynth/pkg/randomize"
	"github.com/matzehuels/poolsynth/pkg/render"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// FrameError reports the frame at which generation stopped. Frames before
// it are complete, so a resumed run can pick up from here.
type FrameError struct {
	Split string
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %s/%d: %v", e.Split, e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Options configures a Generator.
type Options struct {
	// Renderer produces the frame images. Required.
	Renderer render.Renderer
	// Discoverer lists the scene's named children. Defaults to
	// scene.DiscovererFor(cfg).
	Discoverer scene.Discoverer
	// Store backs the resume ledger. Nil disables checkpointing.
	Store cache.Cache
	// Resume keeps the existing output tree and skips frames that are
	// recorded in Store and present on disk.
	Resume bool
	// Hooks receives progress events. Defaults to observability.Generation().
	Hooks observability.GenerationHooks
	// Logger defaults to a discarding logger.
	Logger *log.Logger
}

// Generator produces a dataset from a configuration.
type Generator struct {
	cfg        config.Config
	opts       Options
	layout     Layout
	randomizer *randomize.Randomizer
	projector  annotate.Projector
	checkpoint *cache.Checkpoint
	runKey     string
	logger     *log.Logger
	hooks      observability.GenerationHooks
}

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(cfg config.Config, opts Options) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Renderer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no renderer configured")
	}
	if opts.Discoverer == nil {
		opts.Discoverer = scene.DiscovererFor(cfg)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Hooks == nil {
		opts.Hooks = observability.Generation()
	}

	runKey, err := RunKey(cfg)
	if err != nil {
		return nil, err
	}

	return &Generator{
		cfg:        cfg,
		opts:       opts,
		layout:     NewLayout(cfg.Output),
		randomizer: randomize.New(cfg, opts.Logger),
		projector:  annotate.NewProjector(cfg.PocketBoxSize),
		checkpoint: cache.NewCheckpoint(opts.Store, runKey),
		runKey:     runKey,
		logger:     opts.Logger,
		hooks:      opts.Hooks,
	}, nil
}

// RunKey identifies the configuration a dataset was generated from: the
// SHA-256 of its TOML encoding.
func RunKey(cfg config.Config) (string, error) {
	data, err := cfg.TOML()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "encode config")
	}
	return cache.Hash(data), nil
}

// Layout returns the output layout.
func (g *Generator) Layout() Layout { return g.layout }

// Run generates every split. Without Resume the output tree is deleted and
// recreated first; filesystem errors there abort before any frame is
// rendered. Cancellation is checked between frames. Any frame failure stops
// the run with a *FrameError.
func (g *Generator) Run(ctx context.Context) (*export.Generation, error) {
	if g.opts.Resume {
		if err := g.layout.Create(); err != nil {
			return nil, err
		}
	} else {
		if err := g.layout.Cleanup(); err != nil {
			return nil, err
		}
		if err := g.layout.Create(); err != nil {
			return nil, err
		}
	}

	children := g.opts.Discoverer.Children()
	state := scene.NewState(g.cfg, children)
	g.randomizer.Prepare(state)
	names := scene.NewRegistry(children).ClassNames()

	g.logger.Info("generating dataset",
		"output", g.layout.Root,
		"images", g.cfg.TotalImages,
		"balls", len(state.Balls),
		"pockets", len(state.Pockets),
		"seed", g.cfg.Seed)

	manifest := export.NewGeneration(g.runKey, g.cfg.Seed, time.Now())
	for _, plan := range Plan(g.cfg) {
		stats, err := g.runSplit(ctx, state, plan)
		manifest.Splits[plan.Split] = stats
		if err != nil {
			return manifest, err
		}
	}
	manifest.FinishedAt = time.Now().UTC()

	if err := export.WriteDataYAML(g.layout.Root, export.NewDataYAML(absPath(g.layout.Root), names)); err != nil {
		return manifest, err
	}
	if err := export.WriteGeneration(g.layout.Root, manifest); err != nil {
		return manifest, err
	}
	return manifest, nil
}

func (g *Generator) runSplit(ctx context.Context, state *scene.State, plan SplitPlan) (export.SplitStats, error) {
	stats := export.SplitStats{Planned: plan.Count}
	if plan.Count == 0 {
		return stats, nil
	}

	start := time.Now()
	g.hooks.OnSplitStart(ctx, plan.Split, plan.Count)
	g.logger.Info("generating split", "split", plan.Split, "count", plan.Count, "background", plan.Background)

	for i := range plan.Count {
		if err := ctx.Err(); err != nil {
			return stats, &FrameError{Split: plan.Split, Index: i, Err: err}
		}
		frame := scene.NewFrame(plan.Split, i, g.cfg.BackgroundFramePeriod)

		if g.opts.Resume {
			rec, done, err := g.completed(ctx, frame)
			if err != nil {
				return stats, &FrameError{Split: plan.Split, Index: i, Err: err}
			}
			if done {
				stats.Resumed++
				stats.Labels += rec.Labels
				if rec.Background {
					stats.Background++
				}
				g.hooks.OnFrameComplete(ctx, observability.FrameEvent{
					Split: plan.Split, Index: i, Labels: rec.Labels, Background: rec.Background, Resumed: true,
				})
				continue
			}
		}

		frameStart := time.Now()
		labels, err := g.generateFrame(ctx, state, frame)
		g.hooks.OnFrameComplete(ctx, observability.FrameEvent{
			Split:      plan.Split,
			Index:      i,
			Labels:     labels,
			Background: frame.HideEntities,
			Duration:   time.Since(frameStart),
			Err:        err,
		})
		if err != nil {
			return stats, &FrameError{Split: plan.Split, Index: i, Err: err}
		}
		stats.Generated++
		stats.Labels += labels
		if frame.HideEntities {
			stats.Background++
		}
		g.logger.Debug("frame written", "split", plan.Split, "index", i, "labels", labels, "background", frame.HideEntities)
	}

	g.hooks.OnSplitComplete(ctx, observability.SplitSummary{
		Split:      plan.Split,
		Planned:    stats.Planned,
		Generated:  stats.Generated,
		Resumed:    stats.Resumed,
		Background: stats.Background,
		Labels:     stats.Labels,
		Duration:   time.Since(start),
	})
	g.logger.Debug("split complete", "split", plan.Split, "generated", stats.Generated, "resumed", stats.Resumed)
	return stats, nil
}

// completed reports whether frame is recorded in the ledger and both of its
// files exist.
func (g *Generator) completed(ctx context.Context, frame scene.Frame) (cache.FrameRecord, bool, error) {
	rec, ok, err := g.checkpoint.Lookup(ctx, frame.Split, frame.Index)
	if err != nil {
		return rec, false, errors.Wrap(errors.ErrCodeCheckpoint, err, "read checkpoint")
	}
	if !ok {
		return rec, false, nil
	}
	return rec, export.FrameExists(g.layout.ImagePath(frame.Split, frame.Index), g.layout.LabelPath(frame.Split, frame.Index)), nil
}

// generateFrame randomizes, renders, annotates and writes one frame. Entity
// visibility and ball motion are restored before it returns, whether or not
// the frame succeeded.
func (g *Generator) generateFrame(ctx context.Context, state *scene.State, frame scene.Frame) (int, error) {
	rng := randomize.FrameRand(g.cfg.Seed, frame.Split, frame.Index)

	if frame.HideEntities {
		state.SetEntitiesVisible(false)
	}
	defer func() {
		state.SetEntitiesVisible(true)
		state.ResetMotion()
	}()

	if _, err := g.randomizer.Randomize(rng, state); err != nil {
		return 0, errors.Wrap(errors.ErrCodePlacementExhausted, err, "randomize")
	}

	img, err := render.Capture(ctx, g.opts.Renderer, state, g.cfg.ImageWidth, g.cfg.ImageHeight)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeRender, err, "capture")
	}

	labels := g.projector.Project(state, frame)

	if err := export.WriteImage(g.layout.ImagePath(frame.Split, frame.Index), img, g.cfg.JPEGQuality); err != nil {
		return 0, err
	}
	if err := export.WriteLabels(g.layout.LabelPath(frame.Split, frame.Index), labels); err != nil {
		return 0, err
	}

	err = g.checkpoint.Mark(ctx, cache.FrameRecord{
		Split:      frame.Split,
		Index:      frame.Index,
		Labels:     len(labels),
		Background: frame.HideEntities,
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCheckpoint, err, "write checkpoint")
	}
	return len(labels), nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
