// Package io reads and writes flow diagram inputs and shaping rules.
//
// # Input Format
//
// An input document has three top-level arrays. It may be written as JSON or
// YAML; both use the same field names:
//
//	{
//	  "title": "Ecosystem",
//	  "layers": ["Sources", "Platforms", "Outcomes"],
//	  "nodes": [
//	    {"id": "s1", "label": "Open\nsource", "value": 40, "layer": 0},
//	    {"id": "p1", "label": "Registry", "value": 40, "layer": 1},
//	    {"id": "o1", "label": "Apps", "value": 40, "layer": 2}
//	  ],
//	  "links": [
//	    {"source": "s1", "target": "p1", "value": 30},
//	    {"source": "s1", "target": "o1", "value": 10},
//	    {"source": "p1", "target": "o1", "value": 30}
//	  ]
//	}
//
// Node fields:
//   - id: unique identifier (required)
//   - label: display text, may contain "\n" line breaks (defaults to id)
//   - value: flow volume, drives band height
//   - layer: index into layers
//   - category: styling hint, never affects geometry
//   - height_scale, nudge: optional per-node shaping hints
//   - meta: freeform object carried through to the graph
//
// # Tolerant Import
//
// [BuildGraph] never fails on bad items. Nodes with empty or duplicate ids or
// unknown layers, and links with unknown endpoints or links that do not point
// to a later layer, are dropped. Duplicate links are merged by summing their
// values and negative values are clamped to zero. Every such decision is
// returned as an [Issue] so callers can log it.
//
// # Rules Format
//
// Shaping rules are TOML. Any field left out keeps its default from
// [layout.DefaultRules]:
//
//	fill_factor = 0.95
//	node_width = 100
//
//	[[layer]]
//	index = 0
//	gap = 4
//	height_scale = 0.6
//
//	[[pair]]
//	source = 1
//	target = 2
//	anchor_source = true
//	tier = "grouping"
//
//	[tiers.grouping]
//	base_opacity = 0.5
//	floor = 0.25
//	stroke_width = 0.15
//
// Use [ReadRules] or [ReadRulesFile] to decode them.
//
// # Export
//
// [FromGraph] converts a graph back into an [Input], and [WriteInput] encodes
// it in either format, so an imported, cleaned graph can be written out and
// re-imported without issues.
//
// [layout.DefaultRules]: github.com/matzehuels/alluvial/pkg/render/alluvial/layout.DefaultRules
package io
