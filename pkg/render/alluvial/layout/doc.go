// Package layout computes the pure geometry of an alluvial diagram.
//
// The stages run in a fixed order, each consuming the previous stage's
// output:
//
//   - [PlaceColumns] spreads layers horizontally.
//   - [AllocateBands] gives every node a vertical band proportional to its
//     value, shaped by the [Rules] table.
//   - [RouteEdges] attaches every edge to its nodes: packed at the source,
//     collapsed onto the center at the target.
//   - [CurveFor] turns a routed edge into a closed Bezier outline.
//
// All functions are deterministic and free of side effects. Heights depend
// only on values and the rule table, never on user edits; position offsets
// are applied by the caller between allocation and routing.
package layout
