package layout

import (
	"encoding/json"
	"testing"
)

func TestBandHeight(t *testing.T) {
	tests := []struct {
		name string
		band Band
		want float64
	}{
		{name: "positive height", band: Band{Y0: 20, Y1: 80}, want: 60},
		{name: "zero height", band: Band{Y0: 50, Y1: 50}, want: 0},
		{name: "from origin", band: Band{Y0: 0, Y1: 100}, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.band.Height(); got != tt.want {
				t.Errorf("Height() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBandCenterY(t *testing.T) {
	tests := []struct {
		name string
		band Band
		want float64
	}{
		{name: "centered at 50", band: Band{Y0: 0, Y1: 100}, want: 50},
		{name: "offset range", band: Band{Y0: 20, Y1: 40}, want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.band.CenterY(); got != tt.want {
				t.Errorf("CenterY() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBandShift(t *testing.T) {
	b := Band{NodeID: "a", X: 10, Y0: 0, Y1: 5}.Shift(3, -2)
	if b.X != 13 || b.Y0 != -2 || b.Y1 != 3 {
		t.Errorf("Shift() = %+v", b)
	}
}

func TestBandJSONRoundTrip(t *testing.T) {
	in := Band{NodeID: "a", Layer: 2, X: 10, Y0: 5, Y1: 25}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["height"] != 20.0 || raw["y_center"] != 15.0 {
		t.Errorf("derived fields missing: %s", data)
	}
	var out Band
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
