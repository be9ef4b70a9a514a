// Package pipeline provides the diagram pipeline shared by the CLI and the
// HTTP API.
//
// This package implements the complete input → layout → render pipeline. By
// centralizing this logic, both entry points resolve defaults, load
// persisted overrides and report dropped input the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Turn an input document into a layered graph, dropping and
//     reporting bad items
//  2. Layout: Load the diagram's overrides and compute its geometry
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(repo, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default drawing surface width in pixels.
	DefaultWidth = alluvial.DefaultWidth

	// DefaultHeight is the default drawing surface height in pixels.
	DefaultHeight = alluvial.DefaultHeight

	// DefaultSeed is the default jitter seed for reproducibility.
	DefaultSeed = uint64(alluvial.DefaultSeed)

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Title  string           `json:"title,omitempty"`
	Width  float64          `json:"width,omitempty"`
	Height float64          `json:"height,omitempty"`
	Margin *alluvial.Margin `json:"margin,omitempty"`
	Seed   uint64           `json:"seed,omitempty"` // 0 selects DefaultSeed
	Reseed bool             `json:"reseed,omitempty"` // Pick a fresh jitter seed per run

	// Override options
	DiagramKey    string `json:"diagram_key,omitempty"` // Derived from title and node ids when empty
	SkipOverrides bool   `json:"skip_overrides,omitempty"`

	// Render options
	Formats       []string `json:"formats,omitempty"`
	Background    string   `json:"background,omitempty"`
	HideTitle     bool     `json:"hide_title,omitempty"`
	Interactive   bool     `json:"interactive,omitempty"`
	CompactLayers []int    `json:"compact_layers,omitempty"`
	Scale         float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Rules  *layout.Rules `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the cleaned flow graph.
	Graph *dag.DAG

	// Issues lists input items that were dropped or adjusted.
	Issues []alio.Issue

	// DiagramKey identifies the diagram's persisted overrides.
	DiagramKey string

	// Overrides are the user edits applied to the layout.
	Overrides override.Set

	// Diagram is the computed geometry.
	Diagram *alluvial.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Dropped    int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks all fields.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation. A zero Seed
// is not a valid jitter seed and becomes DefaultSeed.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Defaults must already be applied.
func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "size must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.Scale <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if err := apperr.ValidateTitle(o.Title); err != nil {
		return err
	}
	if o.DiagramKey != "" {
		if err := apperr.ValidateDiagramKey(o.DiagramKey); err != nil {
			return err
		}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Rules != nil {
		if err := o.Rules.Validate(); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidRules, err, "invalid rules")
		}
	}
	return nil
}

// HasFormat reports whether format is requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// rules returns the configured rules or the defaults.
func (o *Options) rules() layout.Rules {
	if o.Rules != nil {
		return *o.Rules
	}
	return layout.DefaultRules()
}

// margin returns the configured margin or the default.
func (o *Options) margin() alluvial.Margin {
	if o.Margin != nil {
		return *o.Margin
	}
	return alluvial.DefaultMargin
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("%vx%v seed=%d reseed=%t formats=%v", o.Width, o.Height, o.Seed, o.Reseed, o.Formats)
}
