// Package alluvial computes multi-layer alluvial (Sankey-style) diagrams.
//
// # Overview
//
// An alluvial diagram draws a layered flow graph as columns of nodes whose
// heights are proportional to their values, connected by filled curved
// bands whose heights are proportional to the flow they carry.
//
// [Compute] runs the full geometry pipeline and returns a [Diagram]:
//
//  1. Columns: layers are spaced evenly across the chart, never closer than
//     the minimum layer spacing ([layout.PlaceColumns]).
//  2. Bands: every node gets a vertical band on a shared scale, so equal
//     values have equal heights in every layer ([layout.AllocateBands]).
//  3. Overrides: persisted user offsets shift bands without changing their
//     heights ([override.Set]).
//  4. Routing: edges are stacked at their source and collapse onto the
//     center of their target ([layout.RouteEdges]).
//  5. Style: overlapping edges are faded, opacities are jittered with a
//     seeded generator, and gradients are memoized ([style.Resolver]).
//  6. Curves: each edge becomes a closed cubic Bezier ribbon
//     ([layout.CurveFor]).
//
// # Determinism
//
// Compute is a pure function of its inputs: the graph, the rules, the
// overrides and the seed. Two calls with the same inputs produce identical
// diagrams, down to the bytes of their JSON encoding.
//
// # Output
//
// A Diagram holds every coordinate a renderer needs. The [sink] subpackage
// writes it as SVG, JSON, PDF or PNG.
//
//	d, err := alluvial.Compute(g,
//	    alluvial.WithRules(rules),
//	    alluvial.WithOverrides(set),
//	    alluvial.WithSeed(42),
//	)
//	svg := sink.RenderSVG(d)
//
// [sink]: github.com/matzehuels/alluvial/pkg/render/alluvial/sink
package alluvial
