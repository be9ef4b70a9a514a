package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alluvial/pkg/pipeline"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/sink"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute diagram geometry as JSON",
		Long: `Compute diagram geometry from a flow document.

The output is a JSON document holding every node band, routed link, curve,
resolved style and gradient, plus the diagram key and the overrides that were
applied. It is the same document 'render -f json' produces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &opts)
		},
	}

	opts.addLayoutFlags(cmd)

	return cmd
}

// runLayout computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, input string, opts *renderOpts) error {
	in, err := loadInput(input)
	if err != nil {
		return err
	}
	popts, err := opts.pipelineOptions()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Computing layout...").Start()
	result, err := runner.Layout(ctx, in, popts)
	if err != nil {
		spin.Fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spin.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(result.Diagram,
		sink.WithDiagramKey(result.DiagramKey),
		sink.WithJSONOverrides(result.Overrides))
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeFile(outputPath, data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Dropped)
	printKeyValue("Key", result.DiagramKey)
	printNewline()
	printNextStep("Render", appName+" render "+input+" -f "+pipeline.FormatSVG)

	return nil
}
