// Package override models user edits layered over computed diagram
// geometry.
//
// A [Set] holds six independent records: node position offsets, node box
// sizes, three per-layer visibility flags (border, box, text) and layer
// label offsets. Every entry is a delta; layout is always recomputed from
// scratch and the set applied on top, so clearing the set restores the
// computed picture exactly.
//
// An [Editor] turns pointer gestures into committed edits and hands each
// affected record to a [Committer], which persists it without blocking the
// caller.
package override
