// Package style resolves the visual weight of routed edges: overlap-aware
// opacity, stroke width and gradient fills.
package style

import (
	"math/rand/v2"

	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
)

// Style is the resolved appearance of one edge.
type Style struct {
	Tier        layout.Tier `json:"tier"`
	Overlaps    int         `json:"overlaps"`
	BaseOpacity float64     `json:"base_opacity"`
	Opacity     float64     `json:"opacity"`
	StrokeWidth float64     `json:"stroke_width"`
	Color       string      `json:"color"`
	GradientID  string      `json:"gradient_id"`
}

// CountOverlaps returns, for every span, how many other spans it overlaps.
// The relation is symmetric so the counts sum to twice the number of
// overlapping pairs.
func CountOverlaps(spans []geom.Interval) []int {
	counts := make([]int, len(spans))
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].Overlaps(spans[j]) {
				counts[i]++
				counts[j]++
			}
		}
	}
	return counts
}

// Opacity applies the overlap penalty to a tier's base opacity, never going
// below the tier floor.
func Opacity(ts layout.TierStyle, overlaps int, penalty float64) float64 {
	return max(ts.BaseOpacity-penalty*float64(overlaps), ts.Floor)
}

// Resolver turns routed edges into styles. It owns the random source used
// for jitter, so two resolvers built with the same seed resolve the same
// routes identically.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	rules     layout.Rules
	rng       *rand.Rand
	gradients *GradientCache
}

// NewResolver creates a resolver seeded with seed. A nil cache gets a fresh
// one.
func NewResolver(rules layout.Rules, seed uint64, gradients *GradientCache) *Resolver {
	if gradients == nil {
		gradients = NewGradientCache()
	}
	return &Resolver{
		rules:     rules,
		rng:       rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		gradients: gradients,
	}
}

// Gradients returns the cache the resolver registers gradients with.
func (r *Resolver) Gradients() *GradientCache { return r.gradients }

// Resolve styles every route. Overlaps are counted among routes of the same
// layer pair using their routed spans. The result is aligned with routes.
func (r *Resolver) Resolve(routes []layout.Route) []Style {
	overlaps := make([]int, len(routes))
	byPair := make(map[dag.Pair][]int)
	var pairs []dag.Pair
	for i, rt := range routes {
		if _, seen := byPair[rt.Pair]; !seen {
			pairs = append(pairs, rt.Pair)
		}
		byPair[rt.Pair] = append(byPair[rt.Pair], i)
	}
	for _, p := range pairs {
		idx := byPair[p]
		spans := make([]geom.Interval, len(idx))
		for k, i := range idx {
			spans[k] = routes[i].Routed.Span()
		}
		for k, n := range CountOverlaps(spans) {
			overlaps[idx[k]] = n
		}
	}

	out := make([]Style, len(routes))
	for i, rt := range routes {
		out[i] = r.resolve(rt, overlaps[i])
	}
	return out
}

func (r *Resolver) resolve(rt layout.Route, overlaps int) Style {
	ts := r.rules.TierStyleOf(rt.Pair)
	base := Opacity(ts, overlaps, r.rules.OverlapPenalty)

	opacity := geom.Clamp(base*(1+r.jitter()), ts.Floor, 1)
	stroke := max(ts.StrokeWidth*(1+r.jitter()), r.rules.MinStrokeWidth)

	color := r.rules.LinkColor
	if color == "" {
		color = layout.DefaultLinkColor
	}
	g := r.gradients.Get(rt.Edge.From, rt.Edge.To, color, opacity)
	return Style{
		Tier:        r.rules.TierOf(rt.Pair),
		Overlaps:    overlaps,
		BaseOpacity: base,
		Opacity:     opacity,
		StrokeWidth: stroke,
		Color:       color,
		GradientID:  g.ID,
	}
}

// jitter draws a symmetric relative perturbation in [-Jitter, Jitter).
func (r *Resolver) jitter() float64 {
	if r.rules.Jitter == 0 {
		return 0
	}
	return (r.rng.Float64()*2 - 1) * r.rules.Jitter
}
