package io

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
)

// Adjustments recorded by [BuildGraph] that keep the item.
var (
	ErrClampedValue = errors.New("negative value clamped to 0")
	ErrMergedLink   = errors.New("duplicate link merged")
)

// IssueKind names the kind of input item an [Issue] refers to.
type IssueKind string

const (
	IssueNode IssueKind = "node"
	IssueLink IssueKind = "link"
)

// Issue is a problem found while building a graph from an [Input]. Dropped
// issues mean the item is missing from the graph; the others describe an
// adjustment.
type Issue struct {
	Kind    IssueKind
	ID      string
	Err     error
	Dropped bool
}

func (i Issue) String() string {
	action := "adjusted"
	if i.Dropped {
		action = "dropped"
	}
	return fmt.Sprintf("%s %s %s: %v", i.Kind, i.ID, action, i.Err)
}

// Reason returns the issue's cause as text.
func (i Issue) Reason() string { return i.Err.Error() }

// CountDropped returns how many issues removed an item from the graph.
func CountDropped(issues []Issue) int {
	n := 0
	for _, is := range issues {
		if is.Dropped {
			n++
		}
	}
	return n
}

// BuildGraph converts an input document into a graph.
//
// Bad items are skipped and reported as issues rather than failing the whole
// document. When the input declares no layer names, layers are named
// "Layer 1" up to the highest layer any node uses.
func BuildGraph(in *Input) (*dag.DAG, []Issue) {
	var issues []Issue
	meta := dag.Metadata{}
	if in.Title != "" {
		meta["title"] = in.Title
	}
	g := dag.New(layerNames(in), meta)

	for _, n := range in.Nodes {
		if err := apperr.ValidateNodeID(n.ID); err != nil {
			issues = append(issues, Issue{Kind: IssueNode, ID: n.ID, Err: err, Dropped: true})
			continue
		}
		if n.Value < 0 && !math.IsInf(n.Value, -1) {
			issues = append(issues, Issue{Kind: IssueNode, ID: n.ID, Err: ErrClampedValue})
			n.Value = 0
		}
		err := g.AddNode(dag.Node{
			ID:          n.ID,
			Label:       n.Label,
			Value:       n.Value,
			Category:    n.Category,
			Layer:       n.Layer,
			Meta:        n.Meta,
			HeightScale: max(n.HeightScale, 0),
			Nudge:       n.Nudge,
		})
		if err != nil {
			issues = append(issues, Issue{Kind: IssueNode, ID: n.ID, Err: err, Dropped: true})
		}
	}

	for _, l := range in.Links {
		id := l.Source + "->" + l.Target
		if l.Value < 0 && !math.IsInf(l.Value, -1) {
			issues = append(issues, Issue{Kind: IssueLink, ID: id, Err: ErrClampedValue})
			l.Value = 0
		}
		merged, err := g.MergeEdge(dag.Edge{From: l.Source, To: l.Target, Value: l.Value})
		switch {
		case err != nil:
			issues = append(issues, Issue{Kind: IssueLink, ID: id, Err: err, Dropped: true})
		case merged:
			issues = append(issues, Issue{Kind: IssueLink, ID: id, Err: ErrMergedLink})
		}
	}
	return g, issues
}

func layerNames(in *Input) []string {
	if len(in.Layers) > 0 {
		return in.Layers
	}
	count := 0
	for _, n := range in.Nodes {
		count = max(count, n.Layer+1)
	}
	names := make([]string, count)
	for i := range names {
		names[i] = "Layer " + strconv.Itoa(i+1)
	}
	return names
}
