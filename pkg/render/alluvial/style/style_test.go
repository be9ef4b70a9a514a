package style

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
)

func route(from, to string, pair dag.Pair, sy0, sy1, ty0, ty1 float64) layout.Route {
	b := layout.EdgeBand{SourceY0: sy0, SourceY1: sy1, TargetY0: ty0, TargetY1: ty1}
	return layout.Route{Edge: dag.Edge{From: from, To: to, Value: 1}, Pair: pair, Routed: b, Band: b}
}

func noJitter() layout.Rules {
	r := layout.DefaultRules()
	r.Jitter = 0
	return r
}

func TestCountOverlaps(t *testing.T) {
	tests := []struct {
		name  string
		spans []geom.Interval
		want  []int
	}{
		{"empty", nil, []int{}},
		{"single", []geom.Interval{{Lo: 0, Hi: 1}}, []int{0}},
		{"touching", []geom.Interval{{Lo: 0, Hi: 10}, {Lo: 10, Hi: 20}}, []int{0, 0}},
		{"chain", []geom.Interval{{Lo: 0, Hi: 10}, {Lo: 5, Hi: 15}, {Lo: 12, Hi: 20}}, []int{1, 2, 1}},
		{"all", []geom.Interval{{Lo: 0, Hi: 10}, {Lo: 1, Hi: 9}, {Lo: 2, Hi: 8}}, []int{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountOverlaps(tt.spans)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CountOverlaps()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Overlap counts are symmetric: the total is always even and each pairwise
// test agrees in both directions.
func TestCountOverlapsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		spans := make([]geom.Interval, 2+rng.IntN(10))
		for i := range spans {
			lo := rng.Float64() * 100
			spans[i] = geom.Interval{Lo: lo, Hi: lo + rng.Float64()*30}
		}
		total := 0
		for _, n := range CountOverlaps(spans) {
			total += n
		}
		if total%2 != 0 {
			t.Fatalf("overlap total %d is odd for %v", total, spans)
		}
		for i := range spans {
			for j := range spans {
				if spans[i].Overlaps(spans[j]) != spans[j].Overlaps(spans[i]) {
					t.Fatalf("asymmetric overlap between %v and %v", spans[i], spans[j])
				}
			}
		}
	}
}

func TestOpacity(t *testing.T) {
	ts := layout.TierStyle{BaseOpacity: 0.35, Floor: 0.15}
	tests := []struct {
		overlaps int
		want     float64
	}{
		{0, 0.35},
		{2, 0.25},
		{4, 0.15},
		{40, 0.15},
	}
	for _, tt := range tests {
		if got := Opacity(ts, tt.overlaps, 0.05); !near(got, tt.want) {
			t.Errorf("Opacity(%d) = %v, want %v", tt.overlaps, got, tt.want)
		}
	}
}

func near(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 }

func TestResolveConvergingEdges(t *testing.T) {
	p := dag.Pair{Source: 0, Target: 1}
	routes := []layout.Route{
		route("a", "t", p, 0, 221, 222, 443),
		route("b", "t", p, 226, 447, 222, 443),
		route("c", "t", p, 452, 673, 222, 443),
	}
	styles := NewResolver(noJitter(), 42, nil).Resolve(routes)
	ts := layout.DefaultTiers()[layout.TierDefault]
	for i, s := range styles {
		if s.Overlaps != 2 {
			t.Errorf("edge %d overlaps = %d, want 2", i, s.Overlaps)
		}
		if s.Opacity >= ts.BaseOpacity {
			t.Errorf("edge %d opacity %v should be below base %v", i, s.Opacity, ts.BaseOpacity)
		}
		if s.Opacity < ts.Floor {
			t.Errorf("edge %d opacity %v below floor %v", i, s.Opacity, ts.Floor)
		}
	}
}

func TestResolveCountsWithinPairOnly(t *testing.T) {
	routes := []layout.Route{
		route("a", "x", dag.Pair{Source: 0, Target: 1}, 0, 10, 0, 10),
		route("a", "y", dag.Pair{Source: 0, Target: 2}, 0, 10, 0, 10),
	}
	for _, s := range NewResolver(noJitter(), 1, nil).Resolve(routes) {
		if s.Overlaps != 0 {
			t.Errorf("edges of different pairs must not count as overlapping")
		}
	}
}

func TestResolveTiers(t *testing.T) {
	rules := noJitter()
	rules.Pairs[dag.Pair{Source: 1, Target: 2}] = layout.PairRule{Tier: layout.TierGrouping}
	rules.Pairs[dag.Pair{Source: 0, Target: 2}] = layout.PairRule{Tier: layout.TierDirect}
	routes := []layout.Route{
		route("a", "b", dag.Pair{Source: 0, Target: 1}, 0, 1, 0, 1),
		route("b", "c", dag.Pair{Source: 1, Target: 2}, 0, 1, 0, 1),
		route("a", "c", dag.Pair{Source: 0, Target: 2}, 0, 1, 0, 1),
	}
	styles := NewResolver(rules, 1, nil).Resolve(routes)
	want := []struct {
		tier    layout.Tier
		opacity float64
		stroke  float64
	}{
		{layout.TierDefault, 0.35, 0.15},
		{layout.TierGrouping, 0.5, 0.15},
		{layout.TierDirect, 0.6, 0.5},
	}
	for i, w := range want {
		s := styles[i]
		if s.Tier != w.tier || !near(s.Opacity, w.opacity) || !near(s.StrokeWidth, w.stroke) {
			t.Errorf("styles[%d] = %+v, want %+v", i, s, w)
		}
		if s.Color != layout.DefaultLinkColor {
			t.Errorf("styles[%d].Color = %q", i, s.Color)
		}
	}
}

// With jitter enabled the opacity stays inside [floor, 1] and the stroke
// never drops below the minimum, whatever the seed.
func TestResolveClampsUnderJitter(t *testing.T) {
	rules := layout.DefaultRules()
	rules.Jitter = 0.9
	rules.Tiers[layout.TierDefault] = layout.TierStyle{BaseOpacity: 0.95, Floor: 0.3, StrokeWidth: 0.06}
	var routes []layout.Route
	for i := range 20 {
		routes = append(routes, route("s", string(rune('a'+i)), dag.Pair{Source: 0, Target: 1}, 0, float64(i+1), 0, float64(i+1)))
	}
	for seed := range uint64(50) {
		for i, s := range NewResolver(rules, seed, nil).Resolve(routes) {
			if s.Opacity < 0.3 || s.Opacity > 1 {
				t.Fatalf("seed %d edge %d: opacity %v outside [0.3, 1]", seed, i, s.Opacity)
			}
			if s.StrokeWidth < rules.MinStrokeWidth {
				t.Fatalf("seed %d edge %d: stroke %v below minimum", seed, i, s.StrokeWidth)
			}
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	p := dag.Pair{Source: 0, Target: 1}
	routes := []layout.Route{route("a", "b", p, 0, 5, 0, 5), route("a", "c", p, 5, 9, 5, 9)}
	rules := layout.DefaultRules()

	a := NewResolver(rules, 7, nil).Resolve(routes)
	b := NewResolver(rules, 7, nil).Resolve(routes)
	c := NewResolver(rules, 8, nil).Resolve(routes)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("same seed differs at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	if a[0].Opacity == c[0].Opacity && a[1].Opacity == c[1].Opacity {
		t.Error("different seeds should perturb differently")
	}
}

func TestGradientCacheMemoizes(t *testing.T) {
	c := NewGradientCache()
	g1 := c.Get("a", "b", "#999999", 0.4)
	g2 := c.Get("a", "b", "#999999", 0.2)
	g3 := c.Get("a", "c", "#999999", 0.2)

	if g1 != g2 {
		t.Errorf("same pair should reuse gradient: %+v vs %+v", g1, g2)
	}
	if g1.ID == g3.ID {
		t.Error("different pairs need distinct IDs")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := c.Lookup([]string{g3.ID, g1.ID, g3.ID, "nope"}); len(got) != 2 || got[0].ID != g3.ID {
		t.Errorf("Lookup() = %+v", got)
	}
}

func TestGradientStops(t *testing.T) {
	g := NewGradient("g", "a", "b", "#999999", 0.5)
	want := [3]Stop{{0, 0.75}, {0.5, 0.4}, {1, 0.2}}
	for i := range want {
		if g.Stops[i].Offset != want[i].Offset || !near(g.Stops[i].Opacity, want[i].Opacity) {
			t.Errorf("stop %d = %+v, want %+v", i, g.Stops[i], want[i])
		}
	}
	if capped := NewGradient("g", "a", "b", "#999999", 0.9); capped.Stops[0].Opacity != 1 {
		t.Errorf("first stop = %v, want capped at 1", capped.Stops[0].Opacity)
	}
}

func TestGradientIDSanitized(t *testing.T) {
	g := NewGradientCache().Get("tech ai", "svc/chat", "#999999", 0.3)
	if strings.ContainsAny(g.ID, " /") {
		t.Errorf("ID %q contains unsafe characters", g.ID)
	}
}
