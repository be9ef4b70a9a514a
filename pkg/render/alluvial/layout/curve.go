package layout

import (
	"fmt"
	"strings"
)

// Curve is the closed outline of an edge: a cubic Bezier along the top
// edge, a vertical line down the target side and a cubic Bezier back along
// the bottom edge.
//
// The horizontal control points sit Factor of the way in from each end. The
// top control height is the midpoint of the two top ends pushed down by
// Bow times the horizontal distance; the bottom one is pushed up by the same
// amount, so wide edges bulge slightly toward their middle.
type Curve struct {
	X0       float64 `json:"x0"`
	X1       float64 `json:"x1"`
	SourceY0 float64 `json:"source_y0"`
	SourceY1 float64 `json:"source_y1"`
	TargetY0 float64 `json:"target_y0"`
	TargetY1 float64 `json:"target_y1"`
	CX0      float64 `json:"cx0"`
	CX1      float64 `json:"cx1"`
	CYTop    float64 `json:"cy_top"`
	CYBottom float64 `json:"cy_bottom"`
	Factor   float64 `json:"factor"`
}

// NewCurve builds the outline of an edge band running from x0 to x1.
func NewCurve(x0, x1 float64, b EdgeBand, factor, bow float64) Curve {
	d := x1 - x0
	return Curve{
		X0:       x0,
		X1:       x1,
		SourceY0: b.SourceY0,
		SourceY1: b.SourceY1,
		TargetY0: b.TargetY0,
		TargetY1: b.TargetY1,
		CX0:      x0 + d*factor,
		CX1:      x1 - d*factor,
		CYTop:    (b.SourceY0+b.TargetY0)/2 + d*bow,
		CYBottom: (b.SourceY1+b.TargetY1)/2 - d*bow,
		Factor:   factor,
	}
}

// CurveFor builds the curve of a routed edge using the rule table's curve
// factor and bow.
func CurveFor(rt Route, rules Rules) Curve {
	return NewCurve(rt.X0, rt.X1, rt.Band, rules.CurveFactorFor(rt.Pair), rules.Bow)
}

// Path returns the outline as an SVG path "d" attribute.
func (c Curve) Path() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%s,%s", num(c.X0), num(c.SourceY0))
	fmt.Fprintf(&sb, " C%s,%s %s,%s %s,%s", num(c.CX0), num(c.CYTop), num(c.CX1), num(c.CYTop), num(c.X1), num(c.TargetY0))
	fmt.Fprintf(&sb, " L%s,%s", num(c.X1), num(c.TargetY1))
	fmt.Fprintf(&sb, " C%s,%s %s,%s %s,%s", num(c.CX1), num(c.CYBottom), num(c.CX0), num(c.CYBottom), num(c.X0), num(c.SourceY1))
	sb.WriteString(" Z")
	return sb.String()
}

func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
