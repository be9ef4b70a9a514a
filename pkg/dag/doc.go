// Package dag provides the weighted, layered flow graph consumed by the
// alluvial layout engine.
//
// # Overview
//
// Nodes are grouped into named, ordered layers. Each node carries a flow
// value that later becomes the height of its band; each edge carries the
// value flowing between two nodes. Edges always point forward: the target
// layer must be strictly greater than the source layer. Edges may skip
// layers, which is how a flow from the first to the third column is drawn
// as a single band.
//
// # Basic Usage
//
//	g := dag.New([]string{"Keywords", "Technologies", "Services"}, nil)
//	g.AddNode(dag.Node{ID: "k1", Value: 10, Layer: 0})
//	g.AddNode(dag.Node{ID: "t1", Value: 10, Layer: 1})
//	g.AddEdge(dag.Edge{From: "k1", To: "t1", Value: 10})
//
// Insertion order is significant: it is the top-to-bottom stacking order of
// nodes within a layer and the tie-break order for edges.
//
// # Scale
//
// [DAG.MaxLayerSum] returns the largest per-layer value sum. The layout engine
// divides every value by it so that heights are comparable across layers.
package dag
