package layout

import (
	"encoding/json"

	"github.com/matzehuels/alluvial/pkg/geom"
)

// Band is the vertical extent assigned to one node, placed on its layer's
// column. X is the column center; Y grows downward.
type Band struct {
	NodeID string
	Layer  int
	X      float64
	Y0, Y1 float64
}

// Height returns the vertical span of the band.
func (b Band) Height() float64 { return b.Y1 - b.Y0 }

// CenterY returns the vertical center of the band.
func (b Band) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Interval returns the band's vertical extent.
func (b Band) Interval() geom.Interval { return geom.Interval{Lo: b.Y0, Hi: b.Y1} }

// Shift returns the band moved by (dx, dy).
func (b Band) Shift(dx, dy float64) Band {
	b.X += dx
	b.Y0 += dy
	b.Y1 += dy
	return b
}

type jsonBand struct {
	ID      string  `json:"id"`
	Layer   int     `json:"layer"`
	X       float64 `json:"x"`
	Y0      float64 `json:"y0"`
	Y1      float64 `json:"y1"`
	YCenter float64 `json:"y_center"`
	Height  float64 `json:"height"`
}

func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonBand{
		ID:      b.NodeID,
		Layer:   b.Layer,
		X:       b.X,
		Y0:      b.Y0,
		Y1:      b.Y1,
		YCenter: b.CenterY(),
		Height:  b.Height(),
	})
}

func (b *Band) UnmarshalJSON(data []byte) error {
	var jb jsonBand
	if err := json.Unmarshal(data, &jb); err != nil {
		return err
	}
	*b = Band{NodeID: jb.ID, Layer: jb.Layer, X: jb.X, Y0: jb.Y0, Y1: jb.Y1}
	return nil
}

// Index maps bands by node ID.
func Index(bands []Band) map[string]Band {
	m := make(map[string]Band, len(bands))
	for _, b := range bands {
		m[b.NodeID] = b
	}
	return m
}
