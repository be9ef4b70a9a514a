// Package render provides visualization rendering for layered flow graphs.
//
// # Overview
//
// This package contains the rendering pipeline that turns a layered flow
// graph into visual output. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Alluvial diagrams (in [alluvial] subpackage)
//
// # Format Conversion
//
// A [Converter] turns any SVG into PDF or PNG with the external
// rsvg-convert tool (from librsvg). [DefaultConverter] honors
// $ALLUVIAL_RSVG_CONVERT.
//
//	svg := sink.RenderSVG(diagram, opts...)
//	conv := render.DefaultConverter()
//	pdf, err := conv.Convert(ctx, svg, render.Raster{Format: "pdf"})
//	png, err := conv.Convert(ctx, svg, render.Raster{Format: "png", Scale: 2})
//
// # Alluvial Diagrams
//
// The [alluvial] subpackage computes the geometry of a multi-layer alluvial
// diagram: node bands, edge bands, curves and link styles.
//
// Key alluvial subpackages:
//   - [alluvial/layout]: Band allocation, column placement, edge routing and curves
//   - [alluvial/style]: Overlap counting, opacity tiers and gradients
//   - [alluvial/override]: Persisted user edits and the edit state machine
//   - [alluvial/sink]: Output formats (SVG, JSON, PDF, PNG)
//
// [alluvial]: github.com/matzehuels/alluvial/pkg/render/alluvial
// [alluvial/layout]: github.com/matzehuels/alluvial/pkg/render/alluvial/layout
// [alluvial/style]: github.com/matzehuels/alluvial/pkg/render/alluvial/style
// [alluvial/override]: github.com/matzehuels/alluvial/pkg/render/alluvial/override
// [alluvial/sink]: github.com/matzehuels/alluvial/pkg/render/alluvial/sink
package render
