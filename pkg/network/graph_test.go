package network

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedGraph is a small fixture graph used across the package tests.
type namedGraph struct {
	Name  string
	Rows  []RawEdge
	Nodes int
	Edges int
}

func edges(pairs ...string) []RawEdge {
	if len(pairs)%2 != 0 {
		panic("edges: odd number of endpoints")
	}
	rows := make([]RawEdge, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		rows = append(rows, Edge(pairs[i], pairs[i+1]))
	}
	return rows
}

func pathRows(n int) []RawEdge {
	rows := make([]RawEdge, 0, n)
	for i := 1; i < n; i++ {
		rows = append(rows, Edge(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i)))
	}
	return rows
}

func completeRows(n int) []RawEdge {
	var rows []RawEdge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rows = append(rows, Edge(fmt.Sprintf("k%d", i), fmt.Sprintf("k%d", j)))
		}
	}
	return rows
}

func fixtureGraphs() []namedGraph {
	return []namedGraph{
		{Name: "Empty", Rows: nil, Nodes: 0, Edges: 0},
		{Name: "SingleEdge", Rows: edges("a", "b"), Nodes: 2, Edges: 1},
		{Name: "Triangle", Rows: edges("A", "B", "B", "C", "C", "A"), Nodes: 3, Edges: 3},
		{Name: "TwoDisjointEdges", Rows: edges("A", "B", "C", "D"), Nodes: 4, Edges: 2},
		{Name: "Star", Rows: edges("X", "A", "X", "B", "X", "C", "X", "D"), Nodes: 5, Edges: 4},
		{Name: "Chain", Rows: pathRows(6), Nodes: 6, Edges: 5},
		{
			Name:  "TwoTriangles",
			Rows:  edges("a1", "a2", "a2", "a3", "a3", "a1", "b1", "b2", "b2", "b3", "b3", "b1", "a3", "b1"),
			Nodes: 6,
			Edges: 7,
		},
		{Name: "K5", Rows: completeRows(5), Nodes: 5, Edges: 10},
	}
}

func TestBuildGraph(t *testing.T) {
	for _, fx := range fixtureGraphs() {
		t.Run(fx.Name, func(t *testing.T) {
			g := BuildGraph(fx.Rows)

			assert.Equal(t, fx.Nodes, g.NumNodes())
			assert.Equal(t, fx.Edges, g.NumEdges())

			seen := make(map[string]bool)
			for _, id := range g.Nodes() {
				assert.False(t, seen[id], "duplicate node %s", id)
				seen[id] = true
			}
			for _, e := range g.Edges() {
				assert.True(t, seen[e[0]], "edge endpoint %s not a node", e[0])
				assert.True(t, seen[e[1]], "edge endpoint %s not a node", e[1])
			}
		})
	}
}

func TestBuildGraphSkipsMissingEndpoints(t *testing.T) {
	rows := []RawEdge{
		Edge("A", "B"),
		{Source: Ref("C"), Target: Missing()},
		{Source: Missing(), Target: Ref("D")},
		{Source: Missing(), Target: Missing()},
	}

	g := BuildGraph(rows)

	assert.Equal(t, []string{"A", "B"}, g.Nodes())
	assert.Equal(t, [][2]string{{"A", "B"}}, g.Edges())
	assert.Equal(t, BuildStats{Rows: 4, SkippedRows: 3}, g.Stats())

	_, ok := g.Index("C")
	assert.False(t, ok, "node from a skipped row must not be added")
}

func TestBuildGraphDuplicatesAndLoops(t *testing.T) {
	g := BuildGraph(edges("A", "B", "B", "A", "A", "B", "C", "C"))

	assert.Equal(t, []string{"A", "B", "C"}, g.Nodes())
	assert.Equal(t, 1, g.NumEdges())
	assert.Equal(t, 2, g.Stats().DuplicateEdges)
	assert.Equal(t, 1, g.Stats().SelfLoops)
	assert.Equal(t, 0, g.Degree(2))
}

func TestGraphAccessors(t *testing.T) {
	g := BuildGraph(edges("X", "A", "X", "B", "A", "B"))

	x, ok := g.Index("X")
	require.True(t, ok)
	a, _ := g.Index("A")
	b, _ := g.Index("B")

	assert.Equal(t, "X", g.NodeID(x))
	assert.Equal(t, 2, g.Degree(x))
	assert.ElementsMatch(t, []int{a, b}, g.Neighbors(x))
	assert.True(t, g.HasEdge(a, b))
	assert.True(t, g.HasEdge(b, a))
	assert.Equal(t, 3, g.Undirected().Nodes().Len())

	nodes := g.Nodes()
	nodes[0] = "mutated"
	assert.Equal(t, "X", g.NodeID(0), "Nodes must return a copy")
}
