package override

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrGestureActive is returned when a gesture starts while another one
	// has not ended.
	ErrGestureActive = errors.New("another gesture is in progress")

	// ErrNoGesture is returned by [Editor.Move] and [Editor.End] outside a
	// gesture.
	ErrNoGesture = errors.New("no gesture in progress")

	// ErrNotDraggable is returned by [Editor.BeginDrag] for size targets.
	ErrNotDraggable = errors.New("target cannot be dragged")
)

// State is the edit state of one target.
type State int

const (
	// StateDefault means the target shows computed geometry.
	StateDefault State = iota
	// StateDragging means a gesture is moving or resizing the target. Nothing
	// is persisted in this state.
	StateDragging
	// StateCommitted means the target carries a persisted edit.
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateCommitted:
		return "committed"
	}
	return "default"
}

// Kind selects what a [Target] refers to.
type Kind int

const (
	KindNode Kind = iota
	KindLabel
	KindSize
)

// Target identifies an editable element.
type Target struct {
	Kind   Kind
	NodeID string
	Layer  int
}

// NodeTarget addresses a node's position.
func NodeTarget(id string) Target { return Target{Kind: KindNode, NodeID: id} }

// SizeTarget addresses a node's box size.
func SizeTarget(id string) Target { return Target{Kind: KindSize, NodeID: id} }

// LabelTarget addresses a layer label's position.
func LabelTarget(layer int) Target { return Target{Kind: KindLabel, Layer: layer} }

// Visibility selects one of the per-layer visibility toggles.
type Visibility int

const (
	VisBorder Visibility = iota
	VisBox
	VisText
)

// ParseVisibility maps "border", "box" and "text" to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "border":
		return VisBorder, nil
	case "box":
		return VisBox, nil
	case "text":
		return VisText, nil
	}
	return 0, fmt.Errorf("unknown visibility %q (must be border, box or text)", s)
}

// Committer receives committed edits. Commit and Reset must not block: they
// are called on the interaction path and persist in the background.
type Committer interface {
	Commit(r Record, s Set)
	Reset()
}

type gesture struct {
	target Target
	prev   State
	delta  Offset
	start  Size
}

// Editor drives the edit state machine of one diagram:
//
//	Default --begin--> Dragging --end--> Committed --reset--> Default
//
// Moves during a gesture only change the transient preview. Ending a gesture
// folds it into the committed set and hands the affected record to the
// Committer. Visibility toggles commit immediately.
//
// An Editor is not safe for concurrent use; it belongs to one interaction
// loop.
type Editor struct {
	id        string
	committed Set
	states    map[Target]State
	active    *gesture
	committer Committer
	logger    *log.Logger
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithLogger sets the logger used for gesture events.
func WithLogger(l *log.Logger) EditorOption { return func(e *Editor) { e.logger = l } }

// WithID sets the editor ID instead of generating one.
func WithID(id string) EditorOption { return func(e *Editor) { e.id = id } }

// NewEditor starts an editor from previously persisted edits. Targets with
// an entry in initial start in StateCommitted. A nil committer discards
// commits.
func NewEditor(initial Set, c Committer, opts ...EditorOption) *Editor {
	e := &Editor{
		id:        uuid.NewString(),
		committed: initial.Clone(),
		states:    map[Target]State{},
		committer: c,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.committer == nil {
		e.committer = discard{}
	}
	for id := range e.committed.Offsets {
		e.states[NodeTarget(id)] = StateCommitted
	}
	for id := range e.committed.Sizes {
		e.states[SizeTarget(id)] = StateCommitted
	}
	for layer := range e.committed.Labels {
		e.states[LabelTarget(layer)] = StateCommitted
	}
	return e
}

// ID returns the editor's unique ID.
func (e *Editor) ID() string { return e.id }

// State returns the current state of a target.
func (e *Editor) State(t Target) State {
	if e.active != nil && e.active.target == t {
		return StateDragging
	}
	return e.states[t]
}

// Active reports whether a gesture is in progress.
func (e *Editor) Active() bool { return e.active != nil }

// Overrides returns a copy of the committed edits.
func (e *Editor) Overrides() Set { return e.committed.Clone() }

// Preview returns the committed edits with the in-progress gesture applied.
// Renders during a drag use this; nothing in it is persisted.
func (e *Editor) Preview() Set {
	s := e.committed.Clone()
	if g := e.active; g != nil {
		e.fold(&s, g)
	}
	return s
}

// BeginDrag starts moving a node or a layer label.
func (e *Editor) BeginDrag(t Target) error {
	if t.Kind == KindSize {
		return ErrNotDraggable
	}
	return e.begin(&gesture{target: t})
}

// BeginResize starts resizing a node box whose current size is current.
func (e *Editor) BeginResize(nodeID string, current Size) error {
	return e.begin(&gesture{target: SizeTarget(nodeID), start: current})
}

func (e *Editor) begin(g *gesture) error {
	if e.active != nil {
		return ErrGestureActive
	}
	g.prev = e.states[g.target]
	e.active = g
	return nil
}

// Move accumulates pointer movement into the active gesture.
func (e *Editor) Move(dx, dy float64) error {
	if e.active == nil {
		return ErrNoGesture
	}
	e.active.delta = e.active.delta.Add(Offset{DX: dx, DY: dy})
	return nil
}

// End commits the active gesture.
func (e *Editor) End() error {
	g := e.active
	if g == nil {
		return ErrNoGesture
	}
	e.active = nil
	e.fold(&e.committed, g)
	e.states[g.target] = StateCommitted

	r := recordOf(g.target)
	e.logger.Debug("gesture committed", "editor", e.id, "record", r, "node", g.target.NodeID, "layer", g.target.Layer)
	e.committer.Commit(r, e.committed.Clone())
	return nil
}

// Cancel drops the active gesture without committing.
func (e *Editor) Cancel() {
	if g := e.active; g != nil {
		e.states[g.target] = g.prev
		e.active = nil
	}
}

func (e *Editor) fold(s *Set, g *gesture) {
	t := g.target
	switch t.Kind {
	case KindNode:
		setOffset(s.Offsets, t.NodeID, s.Offsets[t.NodeID].Add(g.delta))
	case KindLabel:
		setOffset(s.Labels, t.Layer, s.Labels[t.Layer].Add(g.delta))
	case KindSize:
		s.Sizes[t.NodeID] = ResizeBy(g.start, g.delta.DX, g.delta.DY)
	}
}

func setOffset[K comparable](m map[K]Offset, k K, o Offset) {
	if o.IsZero() {
		delete(m, k)
		return
	}
	m[k] = o
}

// ResizeBy grows a box symmetrically around its center: a pointer moved by
// (dx, dy) from the gesture start adds twice that to width and height. The
// result never falls below MinWidth x MinHeight.
func ResizeBy(start Size, dx, dy float64) Size {
	return Size{
		Width:  max(start.Width+2*dx, MinWidth),
		Height: max(start.Height+2*dy, MinHeight),
	}
}

func recordOf(t Target) Record {
	switch t.Kind {
	case KindLabel:
		return RecordLabels
	case KindSize:
		return RecordSizes
	}
	return RecordOffsets
}

// Toggle flips one visibility flag of a layer and commits it.
func (e *Editor) Toggle(v Visibility, layer int) {
	m, r := e.visibility(v)
	m[layer] = !visible(m, layer)
	e.logger.Debug("visibility toggled", "editor", e.id, "record", r, "layer", layer, "visible", m[layer])
	e.committer.Commit(r, e.committed.Clone())
}

// ToggleAll shows every layer if any of the first n layers is hidden, and
// hides every layer otherwise.
func (e *Editor) ToggleAll(v Visibility, n int) {
	m, r := e.visibility(v)
	all := true
	for layer := range n {
		all = all && visible(m, layer)
	}
	for layer := range n {
		m[layer] = !all
	}
	e.logger.Debug("visibility toggled", "editor", e.id, "record", r, "layers", n, "visible", !all)
	e.committer.Commit(r, e.committed.Clone())
}

func (e *Editor) visibility(v Visibility) (map[int]bool, Record) {
	switch v {
	case VisBox:
		return e.committed.Boxes, RecordBoxes
	case VisText:
		return e.committed.Texts, RecordTexts
	}
	return e.committed.Borders, RecordBorders
}

// Reset discards every edit, returns all targets to StateDefault and asks
// the committer to clear persisted state.
func (e *Editor) Reset() {
	e.committed = NewSet()
	e.states = map[Target]State{}
	e.active = nil
	e.logger.Debug("edits reset", "editor", e.id)
	e.committer.Reset()
}

type discard struct{}

func (discard) Commit(Record, Set) {}
func (discard) Reset()             {}
