package layout

// Columns holds the horizontal center of every layer.
type Columns struct {
	X          []float64
	Spacing    float64
	NodeWidth  float64
	ChartWidth float64
}

// PlaceColumns spreads n layers across chartWidth. The spacing between
// centers is the one that would fill the chart edge to edge, but never less
// than minSpacing; the columns are then centered on the chart. With large n
// the content can be wider than the chart, see [Columns.Overflow].
func PlaceColumns(n int, nodeWidth, minSpacing, chartWidth float64) Columns {
	c := Columns{NodeWidth: nodeWidth, ChartWidth: chartWidth}
	if n <= 0 {
		return c
	}
	c.X = make([]float64, n)
	if n == 1 {
		c.X[0] = chartWidth / 2
		return c
	}
	ideal := (chartWidth - float64(n)*nodeWidth) / float64(n-1)
	c.Spacing = max(ideal, minSpacing)
	start := chartWidth/2 - float64(n-1)*c.Spacing/2
	for i := range c.X {
		c.X[i] = start + float64(i)*c.Spacing
	}
	return c
}

// At returns the center of layer i, or the chart center when i is out of
// range.
func (c Columns) At(i int) float64 {
	if i < 0 || i >= len(c.X) {
		return c.ChartWidth / 2
	}
	return c.X[i]
}

// ContentWidth returns the width from the left edge of the first column's
// nodes to the right edge of the last column's nodes.
func (c Columns) ContentWidth() float64 {
	if len(c.X) == 0 {
		return 0
	}
	return c.X[len(c.X)-1] - c.X[0] + c.NodeWidth
}

// Overflow reports whether the content is wider than the chart.
func (c Columns) Overflow() bool { return c.ContentWidth() > c.ChartWidth }
