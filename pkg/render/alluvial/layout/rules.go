package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/alluvial/pkg/dag"
)

// Tier names an edge styling category. Tiers are assigned per layer pair
// through [PairRule.Tier]; pairs without a rule use [TierDefault].
type Tier string

const (
	TierDefault  Tier = "default"
	TierGrouping Tier = "grouping"
	TierDirect   Tier = "direct"
)

// TierStyle holds the opacity and stroke parameters of one tier.
type TierStyle struct {
	BaseOpacity float64 `json:"base_opacity"`
	Floor       float64 `json:"floor"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Anchor controls where a thinned band sits inside its stacking slot.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorCenter Anchor = "center"
)

// LayerRule shapes the bands of one layer. Zero scale factors mean 1.
type LayerRule struct {
	HeightScale   float64
	MinNodeHeight float64
	Gap           *float64 // nil uses Rules.Gap
	BandScale     float64  // drawn fraction of the stacking slot
	Anchor        Anchor
	NodeWidth     float64 // 0 uses Rules.NodeWidth
}

// NodeRule adjusts a single node. Entries here take precedence over the
// hints carried on the node itself; a zero HeightScale or nil Nudge keeps
// the node's own hint.
type NodeRule struct {
	HeightScale float64
	Nudge       *float64
}

// PairRule adjusts the edges of one layer pair after routing.
//
// WidthScale and TargetWidthScale multiply the source and target band
// heights around their centers. AnchorSource re-centers every source band on
// its node's center before scaling, which gathers a node's outgoing edges
// into a single spout. CurveFactor overrides the layer-distance default.
type PairRule struct {
	WidthScale       float64
	TargetWidthScale float64
	AnchorSource     bool
	Tier             Tier
	CurveFactor      float64
}

// Rules is the tuning table of the layout engine. Nothing in the engine
// refers to specific node or layer identities; every special case lives here.
type Rules struct {
	FillFactor      float64
	NodeWidth       float64
	MinLayerSpacing float64
	Gap             float64

	CurveFactor     float64
	SkipCurveFactor float64
	Bow             float64
	LabelY          float64

	OverlapPenalty float64
	Jitter         float64
	MinStrokeWidth float64
	LinkColor      string

	Layers map[int]LayerRule
	Nodes  map[string]NodeRule
	Pairs  map[dag.Pair]PairRule
	Tiers  map[Tier]TierStyle
}

// Default tuning values.
const (
	DefaultFillFactor      = 0.95
	DefaultNodeWidth       = 100.0
	DefaultMinLayerSpacing = 130.0
	DefaultGap             = 5.0
	DefaultCurveFactor     = 0.08
	DefaultSkipCurveFactor = 0.15
	DefaultBow             = 0.03
	DefaultLabelY          = -30.0
	DefaultOverlapPenalty  = 0.05
	DefaultJitter          = 0.1
	DefaultMinStrokeWidth  = 0.05
	DefaultLinkColor       = "#999999"
)

// DefaultTiers returns the built-in tier parameters.
func DefaultTiers() map[Tier]TierStyle {
	return map[Tier]TierStyle{
		TierDefault:  {BaseOpacity: 0.35, Floor: 0.15, StrokeWidth: 0.15},
		TierGrouping: {BaseOpacity: 0.5, Floor: 0.25, StrokeWidth: 0.15},
		TierDirect:   {BaseOpacity: 0.6, Floor: 0.4, StrokeWidth: 0.5},
	}
}

// DefaultRules returns a neutral rule table: no per-layer, per-node or
// per-pair shaping, built-in tiers.
func DefaultRules() Rules {
	return Rules{
		FillFactor:      DefaultFillFactor,
		NodeWidth:       DefaultNodeWidth,
		MinLayerSpacing: DefaultMinLayerSpacing,
		Gap:             DefaultGap,
		CurveFactor:     DefaultCurveFactor,
		SkipCurveFactor: DefaultSkipCurveFactor,
		Bow:             DefaultBow,
		LabelY:          DefaultLabelY,
		OverlapPenalty:  DefaultOverlapPenalty,
		Jitter:          DefaultJitter,
		MinStrokeWidth:  DefaultMinStrokeWidth,
		LinkColor:       DefaultLinkColor,
		Layers:          map[int]LayerRule{},
		Nodes:           map[string]NodeRule{},
		Pairs:           map[dag.Pair]PairRule{},
		Tiers:           DefaultTiers(),
	}
}

// Layer returns the rule for a layer, or the zero rule.
func (r Rules) Layer(layer int) LayerRule { return r.Layers[layer] }

// GapFor returns the vertical gap between consecutive nodes of a layer.
func (r Rules) GapFor(layer int) float64 {
	if g := r.Layers[layer].Gap; g != nil {
		return *g
	}
	return r.Gap
}

// NodeWidthFor returns the box width used for nodes of a layer.
func (r Rules) NodeWidthFor(layer int) float64 {
	if w := r.Layers[layer].NodeWidth; w > 0 {
		return w
	}
	return r.NodeWidth
}

// NodeShape returns the height scale and vertical nudge for a node.
func (r Rules) NodeShape(n *dag.Node) (scale, nudge float64) {
	scale, nudge = orOne(n.HeightScale), n.Nudge
	if nr, ok := r.Nodes[n.ID]; ok {
		if nr.HeightScale > 0 {
			scale = nr.HeightScale
		}
		if nr.Nudge != nil {
			nudge = *nr.Nudge
		}
	}
	return scale, nudge
}

// Pair returns the adjustment rule for a layer pair, or the zero rule.
func (r Rules) Pair(p dag.Pair) PairRule { return r.Pairs[p] }

// TierOf returns the tier assigned to a layer pair.
func (r Rules) TierOf(p dag.Pair) Tier {
	if t := r.Pairs[p].Tier; t != "" {
		return t
	}
	return TierDefault
}

// TierStyleOf returns the style parameters for a layer pair, falling back to
// the default tier when the pair's tier has no entry.
func (r Rules) TierStyleOf(p dag.Pair) TierStyle {
	if ts, ok := r.Tiers[r.TierOf(p)]; ok {
		return ts
	}
	if ts, ok := r.Tiers[TierDefault]; ok {
		return ts
	}
	return DefaultTiers()[TierDefault]
}

// CurveFactorFor returns the horizontal control-point factor of a pair.
func (r Rules) CurveFactorFor(p dag.Pair) float64 {
	if f := r.Pairs[p].CurveFactor; f > 0 {
		return f
	}
	if p.Skips() {
		return r.SkipCurveFactor
	}
	return r.CurveFactor
}

// Validate reports the first inconsistent setting.
func (r Rules) Validate() error {
	if err := r.checkFinite(); err != nil {
		return err
	}
	switch {
	case r.FillFactor <= 0 || r.FillFactor > 1:
		return fmt.Errorf("fill factor %v must be in (0, 1]", r.FillFactor)
	case r.NodeWidth <= 0:
		return fmt.Errorf("node width %v must be positive", r.NodeWidth)
	case r.MinLayerSpacing < 0:
		return fmt.Errorf("min layer spacing %v must not be negative", r.MinLayerSpacing)
	case r.Gap < 0:
		return fmt.Errorf("gap %v must not be negative", r.Gap)
	case r.Jitter < 0 || r.Jitter >= 1:
		return fmt.Errorf("jitter %v must be in [0, 1)", r.Jitter)
	}
	for layer, lr := range r.Layers {
		if lr.HeightScale < 0 || lr.MinNodeHeight < 0 || lr.NodeWidth < 0 {
			return fmt.Errorf("layer %d: negative scale, height or width", layer)
		}
		if lr.BandScale < 0 || lr.BandScale > 1 {
			return fmt.Errorf("layer %d: band scale %v must be in [0, 1]", layer, lr.BandScale)
		}
		if lr.Gap != nil && *lr.Gap < 0 {
			return fmt.Errorf("layer %d: gap %v must not be negative", layer, *lr.Gap)
		}
		switch lr.Anchor {
		case "", AnchorTop, AnchorCenter:
		default:
			return fmt.Errorf("layer %d: unknown anchor %q", layer, lr.Anchor)
		}
	}
	for id, nr := range r.Nodes {
		if nr.HeightScale < 0 {
			return fmt.Errorf("node %s: height scale %v must not be negative", id, nr.HeightScale)
		}
	}
	for p, pr := range r.Pairs {
		if p.Target <= p.Source {
			return fmt.Errorf("pair %d->%d: target layer must be after source layer", p.Source, p.Target)
		}
		if pr.WidthScale < 0 || pr.TargetWidthScale < 0 || pr.CurveFactor < 0 {
			return fmt.Errorf("pair %d->%d: negative scale or curve factor", p.Source, p.Target)
		}
		if _, ok := r.Tiers[r.TierOf(p)]; pr.Tier != "" && !ok {
			return fmt.Errorf("pair %d->%d: unknown tier %q", p.Source, p.Target, pr.Tier)
		}
	}
	for t, ts := range r.Tiers {
		if ts.Floor < 0 || ts.Floor > 1 || ts.BaseOpacity < 0 || ts.StrokeWidth < 0 {
			return fmt.Errorf("tier %s: opacity and stroke must be non-negative, floor at most 1", t)
		}
	}
	return nil
}

func (r Rules) checkFinite() error {
	if !finite(r.FillFactor, r.NodeWidth, r.MinLayerSpacing, r.Gap, r.CurveFactor,
		r.SkipCurveFactor, r.Bow, r.LabelY, r.OverlapPenalty, r.Jitter, r.MinStrokeWidth) {
		return fmt.Errorf("global settings must be finite numbers")
	}
	for layer, lr := range r.Layers {
		if !finite(lr.HeightScale, lr.MinNodeHeight, lr.BandScale, lr.NodeWidth) ||
			(lr.Gap != nil && !finite(*lr.Gap)) {
			return fmt.Errorf("layer %d: values must be finite", layer)
		}
	}
	for id, nr := range r.Nodes {
		if !finite(nr.HeightScale) || (nr.Nudge != nil && !finite(*nr.Nudge)) {
			return fmt.Errorf("node %s: values must be finite", id)
		}
	}
	for p, pr := range r.Pairs {
		if !finite(pr.WidthScale, pr.TargetWidthScale, pr.CurveFactor) {
			return fmt.Errorf("pair %d->%d: values must be finite", p.Source, p.Target)
		}
	}
	for t, ts := range r.Tiers {
		if !finite(ts.BaseOpacity, ts.Floor, ts.StrokeWidth) {
			return fmt.Errorf("tier %s: values must be finite", t)
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func orOne(f float64) float64 {
	if f <= 0 {
		return 1
	}
	return f
}
