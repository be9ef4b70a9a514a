// Package geom holds the one-dimensional interval arithmetic shared by the
// alluvial layout stages: band stacking, proportional sizing and overlap tests.
package geom

import "math"

// Epsilon is the tolerance used by overlap tests. Bands that merely touch,
// or intersect by less than Epsilon, do not overlap.
const Epsilon = 1e-9

// Interval is a closed vertical range [Lo, Hi] in user units.
type Interval struct {
	Lo, Hi float64
}

// Span returns the interval covering both a and b.
func Span(a, b Interval) Interval {
	return Interval{Lo: math.Min(a.Lo, b.Lo), Hi: math.Max(a.Hi, b.Hi)}
}

// Length returns Hi - Lo.
func (i Interval) Length() float64 { return i.Hi - i.Lo }

// Center returns the midpoint of the interval.
func (i Interval) Center() float64 { return (i.Lo + i.Hi) / 2 }

// Shift moves the interval by d.
func (i Interval) Shift(d float64) Interval { return Interval{Lo: i.Lo + d, Hi: i.Hi + d} }

// Centered returns an interval of the given length centered on c.
func Centered(c, length float64) Interval {
	return Interval{Lo: c - length/2, Hi: c + length/2}
}

// Recenter keeps the length and moves the midpoint to c.
func (i Interval) Recenter(c float64) Interval { return Centered(c, i.Length()) }

// Scale multiplies the length by f around the interval's own center.
func (i Interval) Scale(f float64) Interval { return Centered(i.Center(), i.Length()*f) }

// Intersection returns the length of the overlap between two intervals,
// or 0 when they are disjoint.
func Intersection(a, b Interval) float64 {
	return math.Max(0, math.Min(a.Hi, b.Hi)-math.Max(a.Lo, b.Lo))
}

// Overlaps reports whether the two intervals share more than Epsilon of
// their extent. The test is symmetric.
func (i Interval) Overlaps(o Interval) bool { return Intersection(i, o) > Epsilon }

// Proportion maps value onto extent relative to total. A non-positive total
// yields 0 rather than dividing by zero.
func Proportion(value, total, extent float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * extent
}

// Stack lays lengths out top-to-bottom starting at start, separating
// consecutive intervals by gap.
func Stack(lengths []float64, start, gap float64) []Interval {
	out := make([]Interval, len(lengths))
	y := start
	for i, l := range lengths {
		out[i] = Interval{Lo: y, Hi: y + l}
		y += l + gap
	}
	return out
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }
