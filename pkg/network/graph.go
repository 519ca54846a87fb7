package network

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// NodeRef is one endpoint of a raw edge-list row. A NodeRef that is not
// Valid marks a missing value (an empty or NA cell in the source data).
type NodeRef struct {
	ID    string
	Valid bool
}

// Ref returns a present endpoint.
func Ref(id string) NodeRef {
	return NodeRef{ID: id, Valid: true}
}

// Missing returns the missing-value marker.
func Missing() NodeRef {
	return NodeRef{}
}

// RawEdge is a single (source, target) row of an edge list.
type RawEdge struct {
	Source NodeRef
	Target NodeRef
}

// Edge builds a RawEdge with both endpoints present.
func Edge(source, target string) RawEdge {
	return RawEdge{Source: Ref(source), Target: Ref(target)}
}

// BuildStats records what the builder did with its input rows.
type BuildStats struct {
	Rows           int `json:"rows"`
	SkippedRows    int `json:"skipped_rows"`
	DuplicateEdges int `json:"duplicate_edges"`
	SelfLoops      int `json:"self_loops"`
}

// Graph is an immutable undirected simple graph over opaque string node ids.
//
// Nodes are indexed 0..n-1 in discovery order; the same index is used as the
// gonum node ID of the mirrored simple.UndirectedGraph so gonum algorithms can
// run on the topology without a translation table.
type Graph struct {
	ids       []string
	index     map[string]int
	neighbors [][]int  // insertion ordered adjacency
	edges     [][2]int // insertion ordered, first-seen orientation
	g         *simple.UndirectedGraph
	stats     BuildStats
}

// BuildGraph converts edge-list rows into a Graph.
//
// Rows with a missing endpoint are skipped. Duplicate edges are idempotent.
// A self-loop row registers its node but adds no edge.
func BuildGraph(rows []RawEdge) *Graph {
	g := &Graph{
		index: make(map[string]int),
		g:     simple.NewUndirectedGraph(),
	}

	for _, row := range rows {
		g.stats.Rows++

		if !row.Source.Valid || !row.Target.Valid {
			g.stats.SkippedRows++
			continue
		}

		u := g.addNode(row.Source.ID)
		v := g.addNode(row.Target.ID)

		if u == v {
			g.stats.SelfLoops++
			continue
		}
		if g.g.HasEdgeBetween(int64(u), int64(v)) {
			g.stats.DuplicateEdges++
			continue
		}

		g.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		g.neighbors[u] = append(g.neighbors[u], v)
		g.neighbors[v] = append(g.neighbors[v], u)
		g.edges = append(g.edges, [2]int{u, v})
	}

	return g
}

func (g *Graph) addNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.index[id] = i
	g.ids = append(g.ids, id)
	g.neighbors = append(g.neighbors, nil)
	g.g.AddNode(simple.Node(i))
	return i
}

// NumNodes returns |V|.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NumEdges returns |E|.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Stats returns the builder statistics.
func (g *Graph) Stats() BuildStats { return g.stats }

// NodeID returns the identifier of node i.
func (g *Graph) NodeID(i int) string { return g.ids[i] }

// Index returns the discovery index of a node identifier.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Nodes returns a copy of the node identifiers in discovery order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Edges returns a copy of the edges as identifier pairs in insertion order.
func (g *Graph) Edges() [][2]string {
	out := make([][2]string, len(g.edges))
	for i, e := range g.edges {
		out[i] = [2]string{g.ids[e[0]], g.ids[e[1]]}
	}
	return out
}

// Degree returns the number of neighbours of node i.
func (g *Graph) Degree(i int) int { return len(g.neighbors[i]) }

// Neighbors returns the adjacency of node i. The slice must not be modified.
func (g *Graph) Neighbors(i int) []int { return g.neighbors[i] }

// HasEdge reports whether nodes i and j are adjacent.
func (g *Graph) HasEdge(i, j int) bool {
	return g.g.HasEdgeBetween(int64(i), int64(j))
}

// Undirected exposes the gonum view of the topology.
func (g *Graph) Undirected() graph.Undirected { return g.g }
