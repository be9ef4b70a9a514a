package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/sink"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; PNG and PDF shell out to an external converter.
func Render(ctx context.Context, d *alluvial.Diagram, key string, overrides override.Set, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			var data []byte
			var err error

			switch format {
			case FormatSVG:
				data = sink.RenderSVG(d, svgOpts...)
			case FormatPNG:
				data, err = sink.RenderPNG(gctx, d, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
			case FormatPDF:
				data, err = sink.RenderPDF(gctx, d, sink.WithSVGOptions(svgOpts...))
			case FormatJSON:
				data, err = sink.RenderJSON(d, sink.WithDiagramKey(key), sink.WithJSONOverrides(overrides))
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}

			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	if opts.HideTitle {
		svgOpts = append(svgOpts, sink.WithoutTitle())
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if len(opts.CompactLayers) > 0 {
		svgOpts = append(svgOpts, sink.WithCompactLayers(opts.CompactLayers...))
	}

	return svgOpts
}
