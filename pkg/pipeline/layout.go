package pipeline

import (
	"github.com/matzehuels/alluvial/pkg/dag"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
)

// GenerateLayout computes the diagram geometry for g with the given
// overrides and jitter seed.
func GenerateLayout(g *dag.DAG, overrides override.Set, seed uint64, opts Options) (*alluvial.Diagram, error) {
	d, err := alluvial.Compute(g,
		alluvial.WithTitle(opts.Title),
		alluvial.WithSize(opts.Width, opts.Height),
		alluvial.WithMargin(opts.margin()),
		alluvial.WithRules(opts.rules()),
		alluvial.WithOverrides(overrides),
		alluvial.WithSeed(seed),
		alluvial.WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "compute layout")
	}
	return d, nil
}
