package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/alluvial/pkg/render/alluvial"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/style"
)

const linkInteractionCSS = `
    .link { transition: stroke-width 0.2s ease; cursor: pointer; }
    .link:hover { stroke-width: 1; filter: brightness(0.85); }`

const fontFamily = `'Inter', 'Noto Sans JP', -apple-system, sans-serif`

// Node box appearance.
const (
	nodeFill          = "#E0E0E0"
	nodeFillOpacity   = 0.5
	nodeStroke        = "#999999"
	nodeStrokeOpacity = 0.5
	textFill          = "#111111"
	titleFontSize     = 28
	layerFontSize     = 20
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	title       bool
	interactive bool
	compact     map[int]bool
}

// WithBackground fills the drawing surface with a solid color.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithoutTitle omits the diagram title even when one is set.
func WithoutTitle() SVGOption { return func(r *svgRenderer) { r.title = false } }

// WithInteraction adds hover styling for links.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithCompactLayers renders node labels of the given layers with a smaller,
// lighter font and tighter line spacing. Useful for keyword-like layers
// with many short labels.
func WithCompactLayers(layers ...int) SVGOption {
	return func(r *svgRenderer) {
		for _, l := range layers {
			r.compact[l] = true
		}
	}
}

// RenderSVG draws a computed diagram. The output depends only on d and the
// options; it never recomputes geometry.
func RenderSVG(d *alluvial.Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{title: true, compact: make(map[int]bool)}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(d.Width), num(d.Height), d.Width, d.Height)

	renderDefs(&buf, d.Gradients)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}
	if r.title && d.Title != "" {
		fmt.Fprintf(&buf, `  <text x="%s" y="%s" text-anchor="middle" font-size="%d" font-weight="600" font-family="%s" fill="%s">%s</text>`+"\n",
			num(d.Width/2), num(d.Margin.Top/3), titleFontSize, fontFamily, textFill, escape(d.Title))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%s,%s)">`+"\n", num(d.Margin.Left), num(d.Margin.Top))
	for _, l := range d.Links {
		renderLink(&buf, d, l)
	}
	for _, n := range d.Nodes {
		r.renderNode(&buf, n)
	}
	for _, l := range d.Layers {
		renderLayerLabel(&buf, l)
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", linkInteractionCSS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, gradients []style.Gradient) {
	if len(gradients) == 0 {
		return
	}
	buf.WriteString("  <defs>\n")
	for _, g := range gradients {
		fmt.Fprintf(buf, `    <linearGradient id="%s" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`+"\n", escape(g.ID))
		for _, s := range g.Stops {
			fmt.Fprintf(buf, `      <stop offset="%s%%" stop-color="%s" stop-opacity="%s"/>`+"\n",
				num(s.Offset*100), escape(g.Color), num3(s.Opacity))
		}
		buf.WriteString("    </linearGradient>\n")
	}
	buf.WriteString("  </defs>\n")
}

func renderLink(buf *bytes.Buffer, d *alluvial.Diagram, l alluvial.Link) {
	s := l.Style
	fmt.Fprintf(buf, `    <path class="link" d="%s" fill="url(#%s)" fill-opacity="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s" data-source="%s" data-target="%s">`,
		l.Path, escape(s.GradientID), num3(s.Opacity), escape(s.Color), num3(s.StrokeWidth), num3(s.Opacity),
		escape(l.Source), escape(l.Target))
	fmt.Fprintf(buf, "<title>%s → %s: %s%s</title></path>\n",
		escape(labelOf(d, l.Source)), escape(labelOf(d, l.Target)), num(l.Value), share(l.Value, d.GlobalMax))
}

func labelOf(d *alluvial.Diagram, id string) string {
	if n, ok := d.Node(id); ok {
		return strings.ReplaceAll(n.Label, "\n", " ")
	}
	return id
}

func share(v, total float64) string {
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", v/total*100)
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n alluvial.Node) {
	b := n.Box
	if n.BoxVisible {
		stroke, width, opacity := "none", 0.0, 0.0
		if n.BorderVisible {
			stroke, width, opacity = nodeStroke, 1, nodeStrokeOpacity
		}
		fmt.Fprintf(buf, `    <rect id="node-%s" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`+"\n",
			escape(n.ID), num(b.X), num(b.Y), num(b.Width), num(b.Height), num(n.Radius), num(n.Radius),
			nodeFill, num(nodeFillOpacity), stroke, num(width), num(opacity))
	}
	if !n.TextVisible {
		return
	}

	size, weight, lineHeight := 16, 600, 14.0
	if r.compact[n.Layer] {
		size, weight, lineHeight = 12, 400, 12.0
	}
	lines := strings.Split(n.Label, "\n")
	for i, line := range lines {
		y := b.CenterY() + (float64(i)-float64(len(lines)-1)/2)*lineHeight
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%dpx" font-weight="%d" font-family="%s" fill="%s" pointer-events="none">%s</text>`+"\n",
			num(b.CenterX()), num(y), size, weight, fontFamily, textFill, escape(line))
	}
}

func renderLayerLabel(buf *bytes.Buffer, l alluvial.Layer) {
	fmt.Fprintf(buf, `    <text class="layer-label" x="%s" y="%s" text-anchor="middle" font-size="%dpx" font-weight="600" font-family="%s" fill="%s">%s</text>`+"\n",
		num(l.Label.X), num(l.Label.Y), layerFontSize, fontFamily, textFill, escape(l.Name))
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string  { return format(v, 2) }
func num3(v float64) string { return format(v, 3) }

func format(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
