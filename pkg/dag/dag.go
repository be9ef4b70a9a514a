package dag

import (
	"errors"
	"maps"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownLayer is returned by [DAG.AddNode] when the node's layer index
	// is negative or not covered by the layer names passed to [New].
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrNegativeValue is returned by [DAG.AddNode] and [DAG.AddEdge] when a
	// flow value is below zero.
	ErrNegativeValue = errors.New("flow value must not be negative")

	// ErrNonFiniteValue is returned by [DAG.AddNode] and [DAG.AddEdge] when a
	// value, height scale or nudge is NaN or infinite.
	ErrNonFiniteValue = errors.New("value must be finite")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonIncreasingLayers is returned by [DAG.AddEdge] and [DAG.Validate]
	// when an edge does not point strictly forward: the target layer must be
	// greater than the source layer. Edges may skip any number of layers.
	ErrNonIncreasingLayers = errors.New("edge must point to a later layer")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when an edge between the
	// same pair of nodes already exists. Use [DAG.MergeEdge] to accumulate.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil - they are initialized when needed.
type Metadata map[string]any

// Node is a flow node assigned to exactly one layer.
//
// Value is the node's flow volume and drives the height of its band.
// Category is carried for styling only and never affects geometry.
// HeightScale and Nudge are optional caller hints consumed by the band
// allocator; a zero HeightScale means "no scaling".
type Node struct {
	ID       string
	Label    string
	Value    float64
	Category string
	Layer    int
	Meta     Metadata

	HeightScale float64
	Nudge       float64
}

// DisplayLabel returns Label, or the ID when no label is set.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a weighted flow from one node to a node in a later layer.
type Edge struct {
	From  string
	To    string
	Value float64
}

// Pair identifies an ordered (source layer, target layer) combination.
type Pair struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Skips reports whether the pair jumps over at least one layer.
func (p Pair) Skips() bool { return p.Target-p.Source > 1 }

// Less orders pairs by source layer, then target layer.
func (p Pair) Less(o Pair) bool {
	if p.Source != o.Source {
		return p.Source < o.Source
	}
	return p.Target < o.Target
}

// DAG is a weighted, layered directed acyclic graph. Nodes live in named,
// ordered layers and every edge points from an earlier layer to a strictly
// later one, which makes the graph acyclic by construction.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	layers   []string
	nodes    map[string]*Node
	order    []*Node
	edges    []Edge
	edgeIdx  map[[2]string]int
	outgoing map[string][]string
	incoming map[string][]string
	byLayer  map[int][]*Node
	meta     Metadata
}

// New creates an empty DAG with the given ordered layer names.
func New(layers []string, meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		layers:   slices.Clone(layers),
		nodes:    make(map[string]*Node),
		edgeIdx:  make(map[[2]string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		byLayer:  make(map[int][]*Node),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// Layers returns a copy of the ordered layer names.
func (d *DAG) Layers() []string { return slices.Clone(d.layers) }

// LayerCount returns the number of declared layers, including empty ones.
func (d *DAG) LayerCount() int { return len(d.layers) }

// LayerName returns the name of layer i, or "" when out of range.
func (d *DAG) LayerName(i int) string {
	if i < 0 || i >= len(d.layers) {
		return ""
	}
	return d.layers[i]
}

// AddNode adds a node and indexes it by layer. Nodes keep their insertion
// order within a layer; that order is the vertical stacking order.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Layer < 0 || n.Layer >= len(d.layers) {
		return ErrUnknownLayer
	}
	if !finite(n.Value, n.HeightScale, n.Nudge) {
		return ErrNonFiniteValue
	}
	if n.Value < 0 {
		return ErrNegativeValue
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	d.byLayer[node.Layer] = append(d.byLayer[node.Layer], node)
	return nil
}

// AddEdge adds a flow between two existing nodes. The target must sit in a
// strictly later layer than the source.
func (d *DAG) AddEdge(e Edge) error {
	if err := d.checkEdge(e); err != nil {
		return err
	}
	if _, dup := d.edgeIdx[[2]string{e.From, e.To}]; dup {
		return ErrDuplicateEdge
	}
	d.appendEdge(e)
	return nil
}

// MergeEdge behaves like AddEdge but sums the value into an existing edge
// between the same nodes instead of failing. It reports whether a merge
// happened.
func (d *DAG) MergeEdge(e Edge) (bool, error) {
	if err := d.checkEdge(e); err != nil {
		return false, err
	}
	if i, dup := d.edgeIdx[[2]string{e.From, e.To}]; dup {
		d.edges[i].Value += e.Value
		return true, nil
	}
	d.appendEdge(e)
	return false, nil
}

func (d *DAG) checkEdge(e Edge) error {
	src, ok := d.nodes[e.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := d.nodes[e.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	if dst.Layer <= src.Layer {
		return ErrNonIncreasingLayers
	}
	if !finite(e.Value) {
		return ErrNonFiniteValue
	}
	if e.Value < 0 {
		return ErrNegativeValue
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

func (d *DAG) appendEdge(e Edge) {
	d.edgeIdx[[2]string{e.From, e.To}] = len(d.edges)
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// NodeIDs returns the IDs of all nodes in insertion order.
func (d *DAG) NodeIDs() []string {
	ids := make([]string, len(d.order))
	for i, n := range d.order {
		ids[i] = n.ID
	}
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of nodes this node flows into.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes flowing into this node.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInLayer returns the nodes of a layer in insertion order.
// Returns nil for an empty or unknown layer.
func (d *DAG) NodesInLayer(layer int) []*Node { return d.byLayer[layer] }

// LayerSum returns the total value of all nodes in a layer.
func (d *DAG) LayerSum(layer int) float64 {
	var sum float64
	for _, n := range d.byLayer[layer] {
		sum += n.Value
	}
	return sum
}

// MaxLayerSum returns the largest per-layer value sum. It is the common
// scale that keeps band heights comparable across layers. Returns 0 for an
// empty graph or a graph whose values are all zero.
func (d *DAG) MaxLayerSum() float64 {
	var best float64
	for layer := range d.byLayer {
		best = max(best, d.LayerSum(layer))
	}
	return best
}

// Pairs returns every layer pair that carries at least one edge, ordered by
// source layer then target layer.
func (d *DAG) Pairs() []Pair {
	seen := make(map[Pair]struct{})
	for _, e := range d.edges {
		seen[d.pairOf(e)] = struct{}{}
	}
	return slices.SortedFunc(maps.Keys(seen), func(a, b Pair) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
}

// EdgesInPair returns the edges of one layer pair in insertion order.
func (d *DAG) EdgesInPair(p Pair) []Edge {
	var out []Edge
	for _, e := range d.edges {
		if d.pairOf(e) == p {
			out = append(out, e)
		}
	}
	return out
}

// PairOf returns the layer pair an edge belongs to. The edge's endpoints
// must exist in the graph.
func (d *DAG) PairOf(e Edge) Pair { return d.pairOf(e) }

func (d *DAG) pairOf(e Edge) Pair {
	return Pair{Source: d.nodes[e.From].Layer, Target: d.nodes[e.To].Layer}
}

// Validate checks graph integrity and returns nil if valid: every edge must
// reference existing nodes and point to a strictly later layer.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		src, ok := d.nodes[e.From]
		if !ok {
			return ErrUnknownSourceNode
		}
		dst, ok := d.nodes[e.To]
		if !ok {
			return ErrUnknownTargetNode
		}
		if dst.Layer <= src.Layer {
			return ErrNonIncreasingLayers
		}
	}
	return nil
}
