package alluvial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/style"
)

// Default drawing surface.
const (
	DefaultWidth  = 1400.0
	DefaultHeight = 700.0
	DefaultSeed   = 42
)

// DefaultMargin leaves room above the chart for the title and layer labels.
var DefaultMargin = Margin{Top: 120, Right: 100, Bottom: 100, Left: 100}

// Node box corner radius bounds.
const (
	minRadius = 24.0
	maxRadius = 32.0
)

// ErrChartTooSmall is returned by [Compute] when the margins leave no chart
// area.
var ErrChartTooSmall = errors.New("chart area must be positive")

// Option configures [Compute].
type Option func(*config)

type config struct {
	title     string
	width     float64
	height    float64
	margin    Margin
	rules     layout.Rules
	overrides override.Set
	seed      uint64
	gradients *style.GradientCache
	logger    *log.Logger
}

// WithTitle sets the diagram title.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithSize sets the drawing surface size.
func WithSize(width, height float64) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithMargin sets the space around the chart area.
func WithMargin(m Margin) Option {
	return func(c *config) { c.margin = m }
}

// WithRules replaces the default layout rules.
func WithRules(r layout.Rules) Option {
	return func(c *config) { c.rules = r }
}

// WithOverrides applies persisted user edits.
func WithOverrides(s override.Set) Option {
	return func(c *config) { c.overrides = s }
}

// WithSeed seeds the opacity jitter.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithLogger sets the logger for overflow warnings and timing.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithGradientCache shares a gradient cache across renders so repeated
// renders of the same edges reuse their gradient definitions. A shared
// cache keeps the opacity of the first render that saw each edge, so only
// share it between renders with the same graph, rules and seed. Without
// this option every Compute call memoizes into its own cache.
func WithGradientCache(gc *style.GradientCache) Option {
	return func(c *config) { c.gradients = gc }
}

func newConfig(opts ...Option) config {
	c := config{
		width:     DefaultWidth,
		height:    DefaultHeight,
		margin:    DefaultMargin,
		rules:     layout.DefaultRules(),
		overrides: override.NewSet(),
		seed:      DefaultSeed,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.gradients == nil {
		c.gradients = style.NewGradientCache()
	}
	return c
}

// Compute lays out g and returns the full diagram geometry.
//
// The computation is a pure function of the graph, the options and the
// seed: the same inputs always produce the same diagram. Overrides never
// affect heights; they shift nodes after allocation, and edges follow the
// shifted nodes.
func Compute(g *dag.DAG, opts ...Option) (*Diagram, error) {
	c := newConfig(opts...)
	if err := c.rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	chartW := c.width - c.margin.Left - c.margin.Right
	chartH := c.height - c.margin.Top - c.margin.Bottom
	if chartW <= 0 || chartH <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrChartTooSmall, chartW, chartH)
	}

	start := time.Now()
	globalMax := g.MaxLayerSum()
	cols := layout.PlaceColumns(g.LayerCount(), c.rules.NodeWidth, c.rules.MinLayerSpacing, chartW)
	canonical := layout.AllocateBands(g, cols, chartH, c.rules)

	effective := make(map[string]layout.Band, len(canonical))
	for _, b := range canonical {
		effective[b.NodeID] = c.overrides.Apply(b)
	}
	routes := layout.RouteEdges(g, effective, layout.Routing{GlobalMax: globalMax, ChartHeight: chartH, Rules: c.rules})
	styles := style.NewResolver(c.rules, c.seed, c.gradients).Resolve(routes)

	d := &Diagram{
		Title:        c.title,
		Width:        c.width,
		Height:       c.height,
		Margin:       c.margin,
		ChartWidth:   chartW,
		ChartHeight:  chartH,
		ContentWidth: cols.ContentWidth(),
		Overflow:     cols.Overflow(),
		Spacing:      cols.Spacing,
		GlobalMax:    globalMax,
		Seed:         c.seed,
		Layers:       buildLayers(g, cols, c),
		Nodes:        buildNodes(g, canonical, effective, c),
		Links:        make([]Link, len(routes)),
	}

	ids := make([]string, len(routes))
	for i, rt := range routes {
		curve := layout.CurveFor(rt, c.rules)
		d.Links[i] = Link{
			Source: rt.Edge.From,
			Target: rt.Edge.To,
			Value:  rt.Edge.Value,
			Pair:   rt.Pair,
			Routed: rt.Routed,
			Band:   rt.Band,
			Curve:  curve,
			Path:   curve.Path(),
			Style:  styles[i],
		}
		ids[i] = styles[i].GradientID
	}
	d.Gradients = c.gradients.Lookup(ids)

	if d.Overflow {
		c.logger.Warn("layers are wider than the chart", "content", d.ContentWidth, "chart", chartW)
	}
	c.logger.Debug("computed diagram", "nodes", len(d.Nodes), "links", len(d.Links), "duration", time.Since(start))
	return d, nil
}

func buildLayers(g *dag.DAG, cols layout.Columns, c config) []Layer {
	layers := make([]Layer, g.LayerCount())
	for i := range layers {
		off := c.overrides.LabelOffset(i)
		x := cols.At(i)
		layers[i] = Layer{
			Index:         i,
			Name:          g.LayerName(i),
			X:             x,
			Label:         Point{X: x + off.DX, Y: c.rules.LabelY + off.DY},
			LabelOffset:   off,
			BorderVisible: c.overrides.BorderVisible(i),
			BoxVisible:    c.overrides.BoxVisible(i),
			TextVisible:   c.overrides.TextVisible(i),
		}
	}
	return layers
}

func buildNodes(g *dag.DAG, canonical []layout.Band, effective map[string]layout.Band, c config) []Node {
	nodes := make([]Node, 0, len(canonical))
	for _, cb := range canonical {
		n, _ := g.Node(cb.NodeID)
		eb := effective[cb.NodeID]
		w, h := c.rules.NodeWidthFor(cb.Layer), eb.Height()
		if sz, ok := c.overrides.Size(cb.NodeID); ok {
			w, h = sz.Width, sz.Height
		}
		nodes = append(nodes, Node{
			ID:            n.ID,
			Label:         n.DisplayLabel(),
			Category:      n.Category,
			Layer:         n.Layer,
			Value:         n.Value,
			Canonical:     cb,
			Band:          eb,
			Box:           geom.Rect{X: eb.X - w/2, Y: eb.Y0, Width: w, Height: h},
			Radius:        geom.Clamp(h/2, minRadius, maxRadius),
			BorderVisible: c.overrides.BorderVisible(n.Layer),
			BoxVisible:    c.overrides.BoxVisible(n.Layer),
			TextVisible:   c.overrides.TextVisible(n.Layer),
		})
	}
	return nodes
}
