package sink

import (
	"context"

	"github.com/matzehuels/alluvial/pkg/render"
	"github.com/matzehuels/alluvial/pkg/render/alluvial"
)

// RasterOption configures PDF and PNG rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts   []SVGOption
	scale     float64
	converter *render.Converter
}

// WithSVGOptions passes options through to the SVG that gets converted.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor. The default is 2.
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

// WithConverter replaces [render.DefaultConverter].
func WithConverter(c *render.Converter) RasterOption {
	return func(r *rasterRenderer) { r.converter = c }
}

// RenderPDF renders d to SVG and converts it to PDF.
func RenderPDF(ctx context.Context, d *alluvial.Diagram, opts ...RasterOption) ([]byte, error) {
	return renderRaster(ctx, d, "pdf", opts)
}

// RenderPNG renders d to SVG and converts it to PNG.
func RenderPNG(ctx context.Context, d *alluvial.Diagram, opts ...RasterOption) ([]byte, error) {
	return renderRaster(ctx, d, "png", opts)
}

func renderRaster(ctx context.Context, d *alluvial.Diagram, format string, opts []RasterOption) ([]byte, error) {
	r := rasterRenderer{scale: 2}
	for _, opt := range opts {
		opt(&r)
	}
	if r.converter == nil {
		r.converter = render.DefaultConverter()
	}
	return r.converter.Convert(ctx, RenderSVG(d, r.svgOpts...), render.Raster{Format: format, Scale: r.scale})
}
