package override

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
)

// Minimum node box size reachable by resizing.
const (
	MinWidth  = 40.0
	MinHeight = 20.0
)

// ErrUnknownRecord is returned when a record name is not one of [Records].
var ErrUnknownRecord = errors.New("unknown override record")

// Offset is a displacement relative to a canonical position.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// IsZero reports whether the offset moves nothing.
func (o Offset) IsZero() bool { return o.DX == 0 && o.DY == 0 }

// Add returns the sum of two offsets.
func (o Offset) Add(p Offset) Offset { return Offset{DX: o.DX + p.DX, DY: o.DY + p.DY} }

// Size is an explicit node box size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Record names one independently persisted part of a [Set].
type Record string

const (
	RecordOffsets Record = "offsets"
	RecordSizes   Record = "sizes"
	RecordBorders Record = "layer-borders"
	RecordBoxes   Record = "layer-rect-visibility"
	RecordTexts   Record = "layer-text-visibility"
	RecordLabels  Record = "layer-labels"
)

// Records lists every record in persistence order.
var Records = []Record{RecordOffsets, RecordSizes, RecordBorders, RecordBoxes, RecordTexts, RecordLabels}

// ParseRecord validates a record name.
func ParseRecord(s string) (Record, error) {
	for _, r := range Records {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRecord, s)
}

// Set is the complete user-edit state of one diagram. Every entry is a
// delta over computed geometry; an absent entry means "no edit": zero
// offset, computed size, visible.
type Set struct {
	Offsets map[string]Offset `json:"offsets"`
	Sizes   map[string]Size   `json:"sizes"`
	Borders map[int]bool      `json:"layer_borders"`
	Boxes   map[int]bool      `json:"layer_boxes"`
	Texts   map[int]bool      `json:"layer_texts"`
	Labels  map[int]Offset    `json:"layer_labels"`
}

// NewSet returns an empty set with all maps allocated.
func NewSet() Set {
	return Set{
		Offsets: map[string]Offset{},
		Sizes:   map[string]Size{},
		Borders: map[int]bool{},
		Boxes:   map[int]bool{},
		Texts:   map[int]bool{},
		Labels:  map[int]Offset{},
	}
}

// Clone returns a deep copy with all maps allocated.
func (s Set) Clone() Set {
	c := NewSet()
	maps.Copy(c.Offsets, s.Offsets)
	maps.Copy(c.Sizes, s.Sizes)
	maps.Copy(c.Borders, s.Borders)
	maps.Copy(c.Boxes, s.Boxes)
	maps.Copy(c.Texts, s.Texts)
	maps.Copy(c.Labels, s.Labels)
	return c
}

// IsZero reports whether the set holds no edits.
func (s Set) IsZero() bool {
	return len(s.Offsets) == 0 && len(s.Sizes) == 0 && len(s.Borders) == 0 &&
		len(s.Boxes) == 0 && len(s.Texts) == 0 && len(s.Labels) == 0
}

// Offset returns the node's position offset.
func (s Set) Offset(nodeID string) Offset { return s.Offsets[nodeID] }

// Size returns the node's explicit size, if any.
func (s Set) Size(nodeID string) (Size, bool) {
	sz, ok := s.Sizes[nodeID]
	return sz, ok
}

// LabelOffset returns the layer label's offset from its default anchor.
func (s Set) LabelOffset(layer int) Offset { return s.Labels[layer] }

// BorderVisible reports whether node borders of a layer are drawn.
func (s Set) BorderVisible(layer int) bool { return visible(s.Borders, layer) }

// BoxVisible reports whether node boxes of a layer are drawn.
func (s Set) BoxVisible(layer int) bool { return visible(s.Boxes, layer) }

// TextVisible reports whether node labels of a layer are drawn.
func (s Set) TextVisible(layer int) bool { return visible(s.Texts, layer) }

func visible(m map[int]bool, layer int) bool {
	v, ok := m[layer]
	return !ok || v
}

// Apply shifts a canonical band by the node's offset.
func (s Set) Apply(b layout.Band) layout.Band {
	o := s.Offsets[b.NodeID]
	if o.IsZero() {
		return b
	}
	return b.Shift(o.DX, o.DY)
}

// Encode serializes one record.
func (s Set) Encode(r Record) ([]byte, error) {
	switch r {
	case RecordOffsets:
		return json.Marshal(nonNil(s.Offsets))
	case RecordSizes:
		return json.Marshal(nonNil(s.Sizes))
	case RecordBorders:
		return json.Marshal(nonNil(s.Borders))
	case RecordBoxes:
		return json.Marshal(nonNil(s.Boxes))
	case RecordTexts:
		return json.Marshal(nonNil(s.Texts))
	case RecordLabels:
		return json.Marshal(nonNil(s.Labels))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, r)
}

// Decode replaces one record with its serialized form. On error the set is
// left unchanged.
func (s *Set) Decode(r Record, data []byte) error {
	var err error
	switch r {
	case RecordOffsets:
		err = decodeInto(data, &s.Offsets)
	case RecordSizes:
		err = decodeInto(data, &s.Sizes)
	case RecordBorders:
		err = decodeInto(data, &s.Borders)
	case RecordBoxes:
		err = decodeInto(data, &s.Boxes)
	case RecordTexts:
		err = decodeInto(data, &s.Texts)
	case RecordLabels:
		err = decodeInto(data, &s.Labels)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecord, r)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", r, err)
	}
	return nil
}

// Clear drops every entry of one record.
func (s *Set) Clear(r Record) {
	switch r {
	case RecordOffsets:
		s.Offsets = map[string]Offset{}
	case RecordSizes:
		s.Sizes = map[string]Size{}
	case RecordBorders:
		s.Borders = map[int]bool{}
	case RecordBoxes:
		s.Boxes = map[int]bool{}
	case RecordTexts:
		s.Texts = map[int]bool{}
	case RecordLabels:
		s.Labels = map[int]Offset{}
	}
}

func decodeInto[K comparable, V any](data []byte, dst *map[K]V) error {
	m := map[K]V{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = map[K]V{}
	}
	*dst = m
	return nil
}

func nonNil[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
