package dag_test

import (
	"fmt"

	"github.com/matzehuels/alluvial/pkg/dag"
)

func ExampleDAG_basic() {
	// Keywords flow into technologies, which flow into services.
	g := dag.New([]string{"Keywords", "Technologies", "Services"}, nil)
	_ = g.AddNode(dag.Node{ID: "llm", Value: 10, Layer: 0})
	_ = g.AddNode(dag.Node{ID: "ai", Value: 10, Layer: 1})
	_ = g.AddNode(dag.Node{ID: "chat", Value: 10, Layer: 2})
	_ = g.AddEdge(dag.Edge{From: "llm", To: "ai", Value: 10})
	_ = g.AddEdge(dag.Edge{From: "ai", To: "chat", Value: 10})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Pairs:", g.Pairs())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Pairs: [{0 1} {1 2}]
}

func ExampleDAG_AddEdge_backwards() {
	g := dag.New([]string{"A", "B"}, nil)
	_ = g.AddNode(dag.Node{ID: "a", Layer: 0})
	_ = g.AddNode(dag.Node{ID: "b", Layer: 1})

	err := g.AddEdge(dag.Edge{From: "b", To: "a", Value: 1})
	fmt.Println(err)
	// Output:
	// edge must point to a later layer
}

func ExampleDAG_MaxLayerSum() {
	g := dag.New([]string{"A", "B"}, nil)
	_ = g.AddNode(dag.Node{ID: "a1", Value: 3, Layer: 0})
	_ = g.AddNode(dag.Node{ID: "a2", Value: 4, Layer: 0})
	_ = g.AddNode(dag.Node{ID: "b1", Value: 5, Layer: 1})

	fmt.Println(g.MaxLayerSum())
	// Output:
	// 7
}
