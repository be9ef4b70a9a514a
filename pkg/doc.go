// Package pkg provides the core libraries for alluvial flow diagrams.
//
// # Overview
//
// Alluvial turns layered flow data (nodes carrying a value, grouped into
// ordered layers, joined by weighted links) into Sankey-style diagrams where
// every node is a vertical band and every link is a ribbon whose thickness is
// proportional to its value. The pkg directory is organized into four areas:
//
//  1. [dag] and [geom] - Graph structure and geometry primitives
//  2. [render/alluvial] - Band allocation, placement, routing, styling, curves
//  3. [store] - Persisted override records (file, memory, SQLite, Redis, MongoDB)
//  4. [pipeline] - Orchestration (parse → layout → render)
//
// # Architecture
//
// The typical data flow:
//
//	JSON/YAML input document
//	         ↓
//	    [io] package (decode, validate, drop dangling items)
//	         ↓
//	    [dag] package (layered graph)
//	         ↓
//	    [render/alluvial] package (layout + overrides + style)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Render a document with the overrides stored for it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/alluvial/pkg/io"
//	    "github.com/matzehuels/alluvial/pkg/pipeline"
//	    "github.com/matzehuels/alluvial/pkg/store"
//	)
//
//	in, _ := io.ImportFile("flows.json")
//	runner := pipeline.NewRunner(store.NewRepository(store.NewMemoryStore()), nil)
//	defer runner.Close()
//
//	result, _ := runner.Execute(context.Background(), in, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [render/alluvial/layout] - Band allocation within a layer, layer placement
// across the canvas, and link routing with funnel collapse.
//
// [render/alluvial/style] - Overlap resolution, seeded opacity jitter and
// memoized gradient definitions.
//
// [render/alluvial/override] - Manual edits (offsets, sizes, label offsets,
// visibility toggles) and the drag/resize state machine that commits them.
//
// [render/alluvial/sink] - Output formats. PDF and PNG go through [render].
//
// [store] - Key/value backends behind a Repository that loads and saves the
// six override records of a diagram.
//
// [errors] - Coded errors and input validation shared by CLI and API.
//
// [observability] - Hooks for pipeline, store and HTTP events.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/alluvial/...    # Specific package
//	go test -run Example                 # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/dag
// [geom]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/geom
// [io]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render
// [render/alluvial]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render/alluvial
// [render/alluvial/layout]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render/alluvial/layout
// [render/alluvial/style]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render/alluvial/style
// [render/alluvial/override]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render/alluvial/override
// [render/alluvial/sink]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/render/alluvial/sink
// [store]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/store
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/alluvial/pkg/observability
package pkg
