package layout

import (
	"testing"

	"github.com/matzehuels/alluvial/pkg/dag"
)

func routeAll(g *dag.DAG, height float64, rules Rules) ([]Route, map[string]Band) {
	cols := PlaceColumns(g.LayerCount(), rules.NodeWidth, rules.MinLayerSpacing, 1000)
	bands := Index(AllocateBands(g, cols, height, rules))
	return RouteEdges(g, bands, Routing{GlobalMax: g.MaxLayerSum(), ChartHeight: height, Rules: rules}), bands
}

func findRoute(t *testing.T, routes []Route, from, to string) Route {
	t.Helper()
	for _, r := range routes {
		if r.Edge.From == from && r.Edge.To == to {
			return r
		}
	}
	t.Fatalf("route %s->%s not found", from, to)
	return Route{}
}

func TestRouteFanOut(t *testing.T) {
	// Insert the smaller edge first: packing must still follow target order.
	g := buildGraph(t, 2,
		[]dag.Node{
			{ID: "s", Value: 40, Layer: 0},
			{ID: "t1", Value: 30, Layer: 1},
			{ID: "t2", Value: 10, Layer: 1},
		},
		[]dag.Edge{
			{From: "s", To: "t2", Value: 10},
			{From: "s", To: "t1", Value: 30},
		},
	)
	routes, _ := routeAll(g, 400, DefaultRules())
	e1 := findRoute(t, routes, "s", "t1")
	e2 := findRoute(t, routes, "s", "t2")

	if !approx(e1.Routed.SourceY0, 0) || !approx(e1.Routed.SourceY1, 285) {
		t.Errorf("s->t1 source = [%v, %v], want [0, 285]", e1.Routed.SourceY0, e1.Routed.SourceY1)
	}
	if !approx(e2.Routed.SourceY0, 285) || !approx(e2.Routed.SourceY1, 380) {
		t.Errorf("s->t2 source = [%v, %v], want [285, 380]", e2.Routed.SourceY0, e2.Routed.SourceY1)
	}
	if r := e1.Routed.Source().Length() / e2.Routed.Source().Length(); !approx(r, 3) {
		t.Errorf("height ratio = %v, want 3", r)
	}
	if e1.Routed.Span().Overlaps(e2.Routed.Span()) {
		t.Errorf("spans %v and %v should not overlap", e1.Routed.Span(), e2.Routed.Span())
	}
	if e1.Band != e1.Routed {
		t.Error("no pair rule: drawn band should equal routed band")
	}
}

func TestRouteCollapsesTargets(t *testing.T) {
	g := buildGraph(t, 2,
		[]dag.Node{
			{ID: "a", Value: 10, Layer: 0},
			{ID: "b", Value: 10, Layer: 0},
			{ID: "c", Value: 10, Layer: 0},
			{ID: "t", Value: 30, Layer: 1},
		},
		[]dag.Edge{
			{From: "a", To: "t", Value: 10},
			{From: "b", To: "t", Value: 10},
			{From: "c", To: "t", Value: 10},
		},
	)
	routes, bands := routeAll(g, 700, DefaultRules())
	center := bands["t"].CenterY()
	for _, r := range routes {
		if !approx(r.Routed.Target().Center(), center) {
			t.Errorf("%s->t target center = %v, want %v", r.Edge.From, r.Routed.Target().Center(), center)
		}
		if !approx(r.Routed.Target().Length(), r.Routed.Source().Length()) {
			t.Errorf("%s->t target height should equal source height", r.Edge.From)
		}
	}
}

func TestRouteFitsOverfullSource(t *testing.T) {
	// Outgoing edges sum to twice the node's own value.
	g := buildGraph(t, 2,
		[]dag.Node{
			{ID: "s", Value: 10, Layer: 0},
			{ID: "t1", Value: 10, Layer: 1},
			{ID: "t2", Value: 10, Layer: 1},
		},
		[]dag.Edge{
			{From: "s", To: "t1", Value: 10},
			{From: "s", To: "t2", Value: 10},
		},
	)
	routes, bands := routeAll(g, 700, DefaultRules())
	var sum float64
	for _, r := range routes {
		sum += r.Routed.Source().Length()
	}
	if sum > bands["s"].Height()+tol {
		t.Errorf("source stack %v exceeds node height %v", sum, bands["s"].Height())
	}
	if !approx(routes[0].Routed.Source().Length(), routes[1].Routed.Source().Length()) {
		t.Error("equal values should keep equal heights after fitting")
	}
}

func TestRoutePairOrder(t *testing.T) {
	g := buildGraph(t, 3,
		[]dag.Node{
			{ID: "a", Value: 1, Layer: 0},
			{ID: "b", Value: 1, Layer: 1},
			{ID: "c", Value: 1, Layer: 2},
		},
		[]dag.Edge{
			{From: "b", To: "c", Value: 1},
			{From: "a", To: "c", Value: 1},
			{From: "a", To: "b", Value: 1},
		},
	)
	routes, _ := routeAll(g, 300, DefaultRules())
	want := []dag.Pair{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 1, Target: 2}}
	for i, p := range want {
		if routes[i].Pair != p {
			t.Errorf("routes[%d].Pair = %v, want %v", i, routes[i].Pair, p)
		}
	}
}

func TestRoutePairAdjustments(t *testing.T) {
	g := buildGraph(t, 2,
		[]dag.Node{
			{ID: "s", Value: 20, Layer: 0},
			{ID: "t1", Value: 10, Layer: 1},
			{ID: "t2", Value: 10, Layer: 1},
		},
		[]dag.Edge{
			{From: "s", To: "t1", Value: 10},
			{From: "s", To: "t2", Value: 10},
		},
	)
	rules := DefaultRules()
	rules.Pairs[dag.Pair{Source: 0, Target: 1}] = PairRule{WidthScale: 0.5, TargetWidthScale: 0.7, AnchorSource: true}
	routes, bands := routeAll(g, 700, rules)

	for _, r := range routes {
		if !approx(r.Band.Source().Center(), bands["s"].CenterY()) {
			t.Errorf("%s->%s source not anchored on node center", r.Edge.From, r.Edge.To)
		}
		if !approx(r.Band.Source().Length(), r.Routed.Source().Length()*0.5) {
			t.Errorf("%s->%s source width not halved", r.Edge.From, r.Edge.To)
		}
		if !approx(r.Band.Target().Length(), r.Routed.Target().Length()*0.7) {
			t.Errorf("%s->%s target width not scaled", r.Edge.From, r.Edge.To)
		}
		if !approx(r.Band.Target().Center(), r.Routed.Target().Center()) {
			t.Errorf("%s->%s target center moved", r.Edge.From, r.Edge.To)
		}
	}
}

func TestRouteSkipsMissingBands(t *testing.T) {
	g := buildGraph(t, 2,
		[]dag.Node{{ID: "a", Value: 1, Layer: 0}, {ID: "b", Value: 1, Layer: 1}},
		[]dag.Edge{{From: "a", To: "b", Value: 1}},
	)
	bands := map[string]Band{"a": {NodeID: "a", Y1: 10}}
	if got := RouteEdges(g, bands, Routing{GlobalMax: 1, ChartHeight: 10, Rules: DefaultRules()}); len(got) != 0 {
		t.Errorf("RouteEdges() = %d routes, want 0", len(got))
	}
}

func TestRouteFollowsShiftedBands(t *testing.T) {
	g := buildGraph(t, 2,
		[]dag.Node{{ID: "a", Value: 1, Layer: 0}, {ID: "b", Value: 1, Layer: 1}},
		[]dag.Edge{{From: "a", To: "b", Value: 1}},
	)
	rules := DefaultRules()
	_, bands := routeAll(g, 100, rules)
	base := RouteEdges(g, bands, Routing{GlobalMax: 1, ChartHeight: 100, Rules: rules})[0]

	bands["b"] = bands["b"].Shift(15, 40)
	moved := RouteEdges(g, bands, Routing{GlobalMax: 1, ChartHeight: 100, Rules: rules})[0]
	if moved.X1-base.X1 != 15 || !approx(moved.Routed.TargetY0-base.Routed.TargetY0, 40) {
		t.Errorf("route did not follow shifted target: %+v vs %+v", moved, base)
	}
	if !approx(moved.Routed.Source().Length(), base.Routed.Source().Length()) {
		t.Error("shifting a node must not change edge heights")
	}
}
