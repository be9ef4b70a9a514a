package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
)

// FromGraph converts a graph back into an input document. Nodes and links
// keep their insertion order, so the result rebuilds an identical graph.
func FromGraph(g *dag.DAG) *Input {
	in := &Input{
		Layers: g.Layers(),
		Nodes:  make([]Node, 0, g.NodeCount()),
		Links:  make([]Link, 0, g.EdgeCount()),
	}
	if t, ok := g.Meta()["title"].(string); ok {
		in.Title = t
	}
	for _, n := range g.Nodes() {
		nd := Node{
			ID:          n.ID,
			Label:       n.Label,
			Value:       n.Value,
			Layer:       n.Layer,
			Category:    n.Category,
			HeightScale: n.HeightScale,
			Nudge:       n.Nudge,
		}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		in.Nodes = append(in.Nodes, nd)
	}
	for _, e := range g.Edges() {
		in.Links = append(in.Links, Link{Source: e.From, Target: e.To, Value: e.Value})
	}
	return in
}

// WriteInput encodes an input document to w. JSON output is indented.
func WriteInput(w io.Writer, in *Input, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return apperr.New(apperr.ErrCodeInvalidFormat, "unknown input format %q", f)
	}
	return nil
}

// ExportFile writes a graph as an input document to path. The format is
// detected from the file extension.
func ExportFile(g *dag.DAG, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteInput(file, FromGraph(g), f)
}
