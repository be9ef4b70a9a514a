package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alluvial/pkg/dag"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/observability"
)

// Build turns an input document into a graph. Every issue is logged;
// dropped items are also reported to the pipeline hooks.
func Build(ctx context.Context, in *alio.Input, logger *log.Logger) (*dag.DAG, []alio.Issue) {
	g, issues := alio.BuildGraph(in)
	hooks := observability.Pipeline()
	for _, is := range issues {
		if is.Dropped {
			logger.Warn("dropped input item", "kind", is.Kind, "id", is.ID, "reason", is.Reason())
			hooks.OnInputDropped(ctx, string(is.Kind), is.Reason())
			continue
		}
		logger.Warn("adjusted input item", "kind", is.Kind, "id", is.ID, "reason", is.Reason())
	}
	return g, issues
}
