package sink

import (
	"encoding/json"

	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	diagramKey string
	overrides  *override.Set
	compact    bool
}

// WithDiagramKey records the key under which the diagram's overrides are
// stored, so a consumer can fetch or edit them later.
func WithDiagramKey(key string) JSONOption {
	return func(r *jsonRenderer) { r.diagramKey = key }
}

// WithJSONOverrides embeds the override records that produced the diagram.
func WithJSONOverrides(s override.Set) JSONOption {
	return func(r *jsonRenderer) { r.overrides = &s }
}

// WithCompactJSON disables indentation.
func WithCompactJSON() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	*alluvial.Diagram
	Key       string        `json:"key,omitempty"`
	Overrides *override.Set `json:"overrides,omitempty"`
}

// RenderJSON exports the diagram geometry as a JSON document.
//
// The document contains every resolved value: node bands before and after
// user offsets, edge bands before and after pair rules, curve control
// points, SVG paths, link styles and gradients. Renderers in other
// environments can draw the diagram from it without recomputing anything.
//
// Output is deterministic: the same diagram always encodes to the same
// bytes.
func RenderJSON(d *alluvial.Diagram, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Diagram: d, Key: r.diagramKey, Overrides: r.overrides}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
