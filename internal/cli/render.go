package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/alluvial/pkg/pipeline"
)

// renderOpts holds the command-line flags shared by the render and layout
// commands.
type renderOpts struct {
	output        string  // output file path (or base path for multiple outputs)
	formats       string  // comma-separated output formats
	rules         string  // TOML rules file
	title         string  // diagram title, overriding the document's
	width         float64 // viewport width in pixels
	height        float64 // viewport height in pixels
	seed          uint64  // jitter seed
	reseed        bool    // draw a fresh jitter seed
	background    string  // SVG background color
	hideTitle     bool    // omit the title from SVG output
	interactive   bool    // emit data attributes for in-browser editing
	compactLayers string  // comma-separated layer indices with compact labels
	noOverrides   bool    // ignore persisted overrides
	key           string  // explicit diagram key
	scale         float64 // PNG scale factor
}

// addLayoutFlags registers the flags that influence geometry.
func (o *renderOpts) addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&o.rules, "rules", "", "TOML layout rules file")
	cmd.Flags().StringVar(&o.title, "title", "", "diagram title (default: the document's title)")
	cmd.Flags().Float64Var(&o.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&o.height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().Uint64Var(&o.seed, "seed", pipeline.DefaultSeed, "seed for link opacity jitter (0 uses the default)")
	cmd.Flags().BoolVar(&o.reseed, "reseed", false, "use a fresh random jitter seed")
	cmd.Flags().BoolVar(&o.noOverrides, "no-overrides", false, "ignore persisted overrides")
	cmd.Flags().StringVar(&o.key, "key", "", "diagram key for persisted overrides (default: derived from title and node IDs)")
}

// pipelineOptions converts flags into pipeline options.
func (o *renderOpts) pipelineOptions() (pipeline.Options, error) {
	compact, err := parseLayers(o.compactLayers)
	if err != nil {
		return pipeline.Options{}, err
	}
	rules, err := loadRules(o.rules)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Title:         o.title,
		Width:         o.width,
		Height:        o.height,
		Seed:          o.seed,
		Reseed:        o.reseed,
		DiagramKey:    o.key,
		SkipOverrides: o.noOverrides,
		Formats:       parseFormats(o.formats),
		Background:    o.background,
		HideTitle:     o.hideTitle,
		Interactive:   o.interactive,
		CompactLayers: compact,
		Scale:         o.scale,
		Rules:         rules,
	}, nil
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a flow document to SVG, PNG, PDF or JSON",
		Long: `Render a flow document (JSON or YAML) to one or more output formats.

Persisted overrides for the diagram are applied unless --no-overrides is set.
PNG and PDF output require rsvg-convert on PATH.`,
		Example: `  alluvial render flows.json
  alluvial render flows.yaml -f svg,png -o out/flows
  alluvial render flows.json --rules rules.toml --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.addLayoutFlags(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.background, "background", "", "SVG background color")
	cmd.Flags().BoolVar(&opts.hideTitle, "hide-title", false, "omit the diagram title")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "emit element IDs and data attributes for editing")
	cmd.Flags().StringVar(&opts.compactLayers, "compact-layers", "", "layer indices drawn with compact labels (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

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
		return err
	}
	defer runner.Close()

	logger.Infof("Rendering %s", input)
	spin := newSpinner(ctx, "Rendering "+strings.Join(popts.Formats, ", ")+"...").Start()
	result, err := runner.Execute(ctx, in, popts)
	spin.Stop()
	if err != nil {
		return err
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Dropped)
	for _, issue := range result.Issues {
		printWarning("%s", issue.String())
	}

	paths, err := writeArtifacts(result.Artifacts, opts.output, input)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(paths)), "key", result.DiagramKey)

	if !result.Overrides.IsZero() {
		printDetail("applied persisted overrides for %s", result.DiagramKey)
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath returns the file an artifact is written to. A single
// artifact goes to output verbatim when one was given.
func artifactPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + format
}

// writeArtifacts writes each rendered format to its own file and returns
// the written paths in format order.
func writeArtifacts(artifacts map[string][]byte, output, input string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := artifactPath(output, input, format, len(formats) == 1)
		if err := writeFile(path, artifacts[format]); err != nil {
			return paths, fmt.Errorf("write %s: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(path string, data []byte) error {
	if path == "-" {
		path = ""
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
