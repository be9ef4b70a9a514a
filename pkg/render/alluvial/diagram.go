package alluvial

import (
	"github.com/matzehuels/alluvial/pkg/dag"
	"github.com/matzehuels/alluvial/pkg/geom"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/style"
)

// Margin is the space between the drawing surface and the chart area.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Point is a position in chart coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layer is a column header with its resolved label position and the layer's
// visibility flags.
type Layer struct {
	Index         int             `json:"index"`
	Name          string          `json:"name"`
	X             float64         `json:"x"`
	Label         Point           `json:"label"`
	LabelOffset   override.Offset `json:"label_offset"`
	BorderVisible bool            `json:"border_visible"`
	BoxVisible    bool            `json:"box_visible"`
	TextVisible   bool            `json:"text_visible"`
}

// Node is a positioned node. Canonical is the computed band; Band is the
// band after the user's position offset. Box is the drawn rectangle, which
// may carry an explicit size.
type Node struct {
	ID            string      `json:"id"`
	Label         string      `json:"label"`
	Category      string      `json:"category,omitempty"`
	Layer         int         `json:"layer"`
	Value         float64     `json:"value"`
	Canonical     layout.Band `json:"canonical"`
	Band          layout.Band `json:"band"`
	Box           geom.Rect   `json:"box"`
	Radius        float64     `json:"radius"`
	BorderVisible bool        `json:"border_visible"`
	BoxVisible    bool        `json:"box_visible"`
	TextVisible   bool        `json:"text_visible"`
}

// Link is a fully resolved edge ready for drawing.
type Link struct {
	Source string          `json:"source"`
	Target string          `json:"target"`
	Value  float64         `json:"value"`
	Pair   dag.Pair        `json:"pair"`
	Routed layout.EdgeBand `json:"routed"`
	Band   layout.EdgeBand `json:"band"`
	Curve  layout.Curve    `json:"curve"`
	Path   string          `json:"path"`
	Style  style.Style     `json:"style"`
}

// Diagram is the complete geometry of one render. It is the boundary
// between the engine and output adapters: nothing downstream recomputes
// positions.
type Diagram struct {
	Title        string           `json:"title,omitempty"`
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	Margin       Margin           `json:"margin"`
	ChartWidth   float64          `json:"chart_width"`
	ChartHeight  float64          `json:"chart_height"`
	ContentWidth float64          `json:"content_width"`
	Overflow     bool             `json:"overflow"`
	Spacing      float64          `json:"spacing"`
	GlobalMax    float64          `json:"global_max"`
	Seed         uint64           `json:"seed"`
	Layers       []Layer          `json:"layers"`
	Nodes        []Node           `json:"nodes"`
	Links        []Link           `json:"links"`
	Gradients    []style.Gradient `json:"gradients"`
}

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesInLayer returns the nodes of one layer in stacking order.
func (d *Diagram) NodesInLayer(layer int) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}
