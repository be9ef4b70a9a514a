package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alluvial/pkg/dag"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/store"
)

// Runner encapsulates pipeline execution with override persistence.
// Both CLI and API use it so that diagrams are keyed and edited the same
// way everywhere.
//
// The Runner is stateless except for the repository and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Overrides *store.Repository
	Logger    *log.Logger

	// Seed returns a fresh jitter seed for runs with Options.Reseed.
	Seed func() uint64
}

// NewRunner creates a runner persisting overrides in repo.
// If repo is nil, overrides are neither loaded nor saved.
func NewRunner(repo *store.Repository, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if repo == nil {
		repo = store.NewRepository(store.NewNullStore(), store.WithLogger(logger))
	}
	return &Runner{
		Overrides: repo,
		Logger:    logger,
		Seed:      rand.Uint64,
	}
}

// Execute runs the complete input → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, in *alio.Input, opts Options) (*Result, error) {
	result, err := r.Layout(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	opts = r.prepare(in, opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := Render(ctx, result.Diagram, result.DiagramKey, result.Overrides, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout runs the build and layout stages only. The result has no
// artifacts.
func (r *Runner) Layout(ctx context.Context, in *alio.Input, opts Options) (*Result, error) {
	opts = r.prepare(in, opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts.Logger.Debug("running pipeline", "options", opts.String())

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, issues := Build(ctx, in, opts.Logger)
	result.Graph = g
	result.Issues = issues
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.Dropped = alio.CountDropped(issues)

	r.Logger.Info("built graph",
		"layers", g.LayerCount(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"dropped", result.Stats.Dropped)

	// Stage 2: Layout
	result.DiagramKey = r.DiagramKey(g, opts)
	result.Overrides = override.NewSet()
	if !opts.SkipOverrides {
		result.Overrides = r.Overrides.Load(ctx, result.DiagramKey)
	}

	seed := opts.Seed
	if opts.Reseed {
		seed = r.Seed()
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())
	layoutStart := time.Now()
	d, err := GenerateLayout(g, result.Overrides, seed, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = d

	r.Logger.Info("computed layout",
		"key", result.DiagramKey,
		"links", len(d.Links),
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// DiagramKey returns the key under which the overrides of g are stored.
func (r *Runner) DiagramKey(g *dag.DAG, opts Options) string {
	if opts.DiagramKey != "" {
		return opts.DiagramKey
	}
	return r.Overrides.Keyer().DiagramKey(opts.Title, g.NodeIDs())
}

// Close waits for pending override writes and releases the store.
func (r *Runner) Close() error {
	if r.Overrides != nil {
		return r.Overrides.Close()
	}
	return nil
}

// prepare fills in the title from the document and the runner's logger.
func (r *Runner) prepare(in *alio.Input, opts Options) Options {
	if opts.Title == "" {
		opts.Title = in.Title
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	return opts
}
