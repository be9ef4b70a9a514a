// Package sink writes computed alluvial diagrams to output formats.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG with gradient definitions, node boxes and labels
//   - [RenderJSON]: the full diagram geometry for external renderers
//   - [RenderPDF], [RenderPNG]: SVG converted with rsvg-convert
//
// Sinks only draw what [alluvial.Compute] resolved. Visibility toggles,
// size overrides and label offsets are already part of the diagram.
package sink
