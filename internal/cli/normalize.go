package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alluvial/pkg/dag"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/pipeline"
)

// normalizeCommand rewrites an input document the way the pipeline sees it:
// dangling links and duplicate nodes dropped, duplicate links merged,
// negative values clamped, missing layer names filled in.
func (c *CLI) normalizeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Clean up a flow document",
		Long: `Normalize a flow document and write it back out.

Items the layout would drop or adjust are fixed in the output and reported.
The output format follows the extension of -o (.json, .yaml, .yml); the
default is <input>.normalized.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNormalize(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return cmd
}

func (c *CLI) runNormalize(ctx context.Context, input, output string) error {
	in, err := loadInput(input)
	if err != nil {
		return err
	}
	g, issues := pipeline.Build(ctx, in, loggerFromContext(ctx))

	if output == "" {
		ext := filepath.Ext(input)
		output = strings.TrimSuffix(input, ext) + ".normalized" + ext
	}
	if err := alio.ExportFile(g, output); err != nil {
		return err
	}

	printSuccess("Normalized %s", input)
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount(), alio.CountDropped(issues))
	for _, is := range issues {
		printWarning("%s", is.String())
	}
	for _, id := range isolatedNodes(g) {
		printDetail("node %s has no links", id)
	}
	return nil
}

// isolatedNodes lists nodes with neither incoming nor outgoing links, in
// insertion order.
func isolatedNodes(g *dag.DAG) []string {
	var ids []string
	for _, n := range g.Nodes() {
		if len(g.Children(n.ID)) == 0 && len(g.Parents(n.ID)) == 0 {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
