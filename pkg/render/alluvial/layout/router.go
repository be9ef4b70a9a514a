package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
)

// EdgeBand is the pair of vertical attachment ranges of one edge: where it
// leaves its source node and where it enters its target node.
type EdgeBand struct {
	SourceY0 float64 `json:"source_y0"`
	SourceY1 float64 `json:"source_y1"`
	TargetY0 float64 `json:"target_y0"`
	TargetY1 float64 `json:"target_y1"`
}

// Source returns the source-side range.
func (e EdgeBand) Source() geom.Interval { return geom.Interval{Lo: e.SourceY0, Hi: e.SourceY1} }

// Target returns the target-side range.
func (e EdgeBand) Target() geom.Interval { return geom.Interval{Lo: e.TargetY0, Hi: e.TargetY1} }

// Span returns the vertical range the edge occupies between its two ends.
func (e EdgeBand) Span() geom.Interval { return geom.Span(e.Source(), e.Target()) }

func edgeBand(src, tgt geom.Interval) EdgeBand {
	return EdgeBand{SourceY0: src.Lo, SourceY1: src.Hi, TargetY0: tgt.Lo, TargetY1: tgt.Hi}
}

// Route is a routed edge.
//
// Routed is the packed and collapsed placement used for overlap detection.
// Band is Routed after the pair's width adjustments and is what gets drawn.
type Route struct {
	Edge   dag.Edge
	Pair   dag.Pair
	X0, X1 float64
	Routed EdgeBand
	Band   EdgeBand
}

// Routing carries the inputs of [RouteEdges].
type Routing struct {
	GlobalMax   float64
	ChartHeight float64
	Rules       Rules
}

// RouteEdges computes the attachment bands of every edge in g against the
// given node bands. Pairs are processed in (source layer, target layer)
// order and edges keep insertion order within a pair. Edges with an
// endpoint missing from bands are skipped.
//
// Source ends are packed top-to-bottom from the source node's top in
// ascending order of target center, so edges do not cross at the source.
// If a source's packed stack would be taller than its band, the stack is
// scaled down to fit. Target ends collapse onto the target node's center,
// keeping each edge's height.
func RouteEdges(g *dag.DAG, bands map[string]Band, r Routing) []Route {
	extent := r.ChartHeight * r.Rules.FillFactor
	var out []Route
	for _, p := range g.Pairs() {
		var routes []Route
		for _, e := range g.EdgesInPair(p) {
			src, okS := bands[e.From]
			tgt, okT := bands[e.To]
			if !okS || !okT {
				continue
			}
			routes = append(routes, Route{Edge: e, Pair: p, X0: src.X, X1: tgt.X})
		}
		packSources(routes, bands, extent, r.GlobalMax)
		collapseTargets(routes, bands)

		rule := r.Rules.Pair(p)
		for i := range routes {
			routes[i].Band = rule.adjust(routes[i].Routed, bands[routes[i].Edge.From])
		}
		out = append(out, routes...)
	}
	return out
}

func packSources(routes []Route, bands map[string]Band, extent, globalMax float64) {
	var sources []string
	bySource := make(map[string][]int)
	for i, rt := range routes {
		if _, seen := bySource[rt.Edge.From]; !seen {
			sources = append(sources, rt.Edge.From)
		}
		bySource[rt.Edge.From] = append(bySource[rt.Edge.From], i)
	}

	for _, id := range sources {
		idx := bySource[id]
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(bands[routes[a].Edge.To].CenterY(), bands[routes[b].Edge.To].CenterY())
		})

		src := bands[id]
		heights := make([]float64, len(idx))
		var sum float64
		for k, i := range idx {
			heights[k] = geom.Proportion(routes[i].Edge.Value, globalMax, extent)
			sum += heights[k]
		}
		if sum > src.Height() && sum > 0 {
			f := max(src.Height(), 0) / sum
			for k := range heights {
				heights[k] *= f
			}
		}

		for k, iv := range geom.Stack(heights, src.Y0, 0) {
			routes[idx[k]].Routed.SourceY0 = iv.Lo
			routes[idx[k]].Routed.SourceY1 = iv.Hi
		}
	}
}

func collapseTargets(routes []Route, bands map[string]Band) {
	for i := range routes {
		rt := &routes[i]
		tgt := geom.Centered(bands[rt.Edge.To].CenterY(), rt.Routed.Source().Length())
		rt.Routed.TargetY0 = tgt.Lo
		rt.Routed.TargetY1 = tgt.Hi
	}
}

func (pr PairRule) adjust(b EdgeBand, source Band) EdgeBand {
	src, tgt := b.Source(), b.Target()
	if pr.AnchorSource {
		src = src.Recenter(source.CenterY())
	}
	if f := orOne(pr.WidthScale); f != 1 {
		src = src.Scale(f)
	}
	if f := orOne(pr.TargetWidthScale); f != 1 {
		tgt = tgt.Scale(f)
	}
	return edgeBand(src, tgt)
}
