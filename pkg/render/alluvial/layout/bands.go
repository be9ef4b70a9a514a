package layout

import (
	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
)

// Allocation carries the inputs shared by every layer during band
// allocation.
type Allocation struct {
	GlobalMax   float64
	ChartHeight float64
	Rules       Rules
}

// AllocateLayer stacks the nodes of one layer top-to-bottom in the given
// order and returns their canonical bands on column x.
//
// A node's raw height is its value relative to GlobalMax, stretched over
// ChartHeight*FillFactor. Layer and node scales apply next, then the layer's
// minimum height. When the stacked slots and gaps would not fit in
// ChartHeight they are shrunk by one common factor. Nudges shift single
// nodes after stacking and do not move their neighbors.
func AllocateLayer(nodes []*dag.Node, x float64, a Allocation) []Band {
	if len(nodes) == 0 {
		return nil
	}
	layer := nodes[0].Layer
	lr := a.Rules.Layer(layer)
	gap := a.Rules.GapFor(layer)
	extent := a.ChartHeight * a.Rules.FillFactor

	slots := make([]float64, len(nodes))
	total := gap * float64(len(nodes)-1)
	for i, n := range nodes {
		scale, _ := a.Rules.NodeShape(n)
		h := geom.Proportion(n.Value, a.GlobalMax, extent) * orOne(lr.HeightScale) * scale
		slots[i] = max(h, lr.MinNodeHeight)
		total += slots[i]
	}
	if a.ChartHeight > 0 && total > a.ChartHeight {
		f := a.ChartHeight / total
		for i := range slots {
			slots[i] *= f
		}
		gap *= f
	}

	stacked := geom.Stack(slots, 0, gap)
	bands := make([]Band, len(nodes))
	for i, n := range nodes {
		iv := thin(stacked[i], lr)
		_, nudge := a.Rules.NodeShape(n)
		iv = iv.Shift(nudge)
		bands[i] = Band{NodeID: n.ID, Layer: layer, X: x, Y0: iv.Lo, Y1: iv.Hi}
	}
	return bands
}

// thin narrows a slot to the layer's band scale, keeping either its top or
// its center in place.
func thin(slot geom.Interval, lr LayerRule) geom.Interval {
	if lr.BandScale <= 0 || lr.BandScale == 1 {
		return slot
	}
	h := slot.Length() * lr.BandScale
	if lr.Anchor == AnchorCenter {
		return geom.Centered(slot.Center(), h)
	}
	return geom.Interval{Lo: slot.Lo, Hi: slot.Lo + h}
}

// AllocateBands allocates every layer of g onto the given columns. Bands are
// returned layer by layer, in node insertion order within each layer.
func AllocateBands(g *dag.DAG, cols Columns, chartHeight float64, rules Rules) []Band {
	a := Allocation{GlobalMax: g.MaxLayerSum(), ChartHeight: chartHeight, Rules: rules}
	var out []Band
	for layer := range g.LayerCount() {
		out = append(out, AllocateLayer(g.NodesInLayer(layer), cols.At(layer), a)...)
	}
	return out
}
