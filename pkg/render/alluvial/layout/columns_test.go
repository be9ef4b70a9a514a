package layout

import (
	"slices"
	"testing"
)

func TestPlaceColumns(t *testing.T) {
	tests := []struct {
		name         string
		n            int
		width        float64
		wantX        []float64
		wantSpace    float64
		wantOverflow bool
	}{
		{
			name:      "ideal spacing",
			n:         3,
			width:     1180,
			wantX:     []float64{150, 590, 1030},
			wantSpace: 440,
		},
		{
			name:         "min spacing wins",
			n:            5,
			width:        600,
			wantX:        []float64{40, 170, 300, 430, 560},
			wantSpace:    130,
			wantOverflow: true,
		},
		{name: "single layer", n: 1, width: 800, wantX: []float64{400}},
		{name: "no layers", n: 0, width: 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PlaceColumns(tt.n, 100, 130, tt.width)
			if !slices.Equal(c.X, tt.wantX) {
				t.Errorf("X = %v, want %v", c.X, tt.wantX)
			}
			if c.Spacing != tt.wantSpace {
				t.Errorf("Spacing = %v, want %v", c.Spacing, tt.wantSpace)
			}
			if c.Overflow() != tt.wantOverflow {
				t.Errorf("Overflow() = %v, want %v (content %v)", c.Overflow(), tt.wantOverflow, c.ContentWidth())
			}
		})
	}
}

func TestPlaceColumnsSymmetric(t *testing.T) {
	for n := 2; n < 9; n++ {
		c := PlaceColumns(n, 100, 130, 1200)
		for i := range n {
			if !approx(c.X[i]+c.X[n-1-i], 1200) {
				t.Fatalf("n=%d: columns %d and %d not symmetric about the center", n, i, n-1-i)
			}
		}
	}
}

func TestColumnsAtOutOfRange(t *testing.T) {
	c := PlaceColumns(2, 100, 130, 1000)
	if c.At(5) != 500 || c.At(-1) != 500 {
		t.Errorf("At() out of range should return chart center")
	}
}
