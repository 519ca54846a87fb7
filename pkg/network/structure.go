package network

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Structure holds the scalar structural measures of a graph.
type Structure struct {
	Nodes         int
	Edges         int
	Density       float64
	Connected     bool
	AvgPathLength float64
	Diameter      int
	AvgDegree     float64
}

// ComputeStructure computes counts, density, average degree and, for
// connected graphs, the average shortest-path length and diameter.
// Path statistics fall back to 0 when the graph is disconnected or when
// their computation fails.
func ComputeStructure(g *Graph) Structure {
	s := Structure{
		Nodes:     g.NumNodes(),
		Edges:     g.NumEdges(),
		Density:   Density(g),
		AvgDegree: AverageDegree(g),
		Connected: g.IsConnected(),
	}

	if s.Connected {
		avg, diameter, err := PathStatistics(g)
		if err == nil {
			s.AvgPathLength = avg
			s.Diameter = diameter
		}
	}

	return s
}

// Density returns 2|E| / (|V|(|V|-1)), or 0 for fewer than two nodes.
func Density(g *Graph) float64 {
	n := g.NumNodes()
	if n < 2 {
		return 0
	}
	return 2 * float64(g.NumEdges()) / (float64(n) * float64(n-1))
}

// AverageDegree returns the mean node degree, or 0 for an empty graph.
func AverageDegree(g *Graph) float64 {
	n := g.NumNodes()
	if n == 0 {
		return 0
	}
	return 2 * float64(g.NumEdges()) / float64(n)
}

// IsConnected reports whether a single connected component spans every node.
// The empty graph is not connected; a single node is.
func (g *Graph) IsConnected() bool {
	if g.NumNodes() == 0 {
		return false
	}
	return len(topo.ConnectedComponents(g.g)) == 1
}

// Components returns the connected components as node index sets.
func (g *Graph) Components() [][]int {
	cc := topo.ConnectedComponents(g.g)
	out := make([][]int, len(cc))
	for i, c := range cc {
		out[i] = make([]int, len(c))
		for j, n := range c {
			out[i][j] = int(n.ID())
		}
	}
	return out
}

// PathStatistics runs a breadth-first search from every node and returns the
// average shortest-path length over all ordered pairs together with the
// diameter. The graph must be connected.
func PathStatistics(g *Graph) (avg float64, diameter int, err error) {
	defer func() {
		if r := recover(); r != nil {
			avg, diameter = 0, 0
			err = fmt.Errorf("path statistics: %v", r)
		}
	}()

	n := g.NumNodes()
	if n == 0 {
		return 0, 0, ErrEmptyGraph
	}
	if n == 1 {
		return 0, 0, nil
	}

	var total, reached int
	for i := 0; i < n; i++ {
		var bf traverse.BreadthFirst
		bf.Walk(g.g, simple.Node(i), func(_ graph.Node, depth int) bool {
			total += depth
			reached++
			if depth > diameter {
				diameter = depth
			}
			return false
		})
	}

	if reached != n*n {
		return 0, 0, ErrDisconnected
	}

	return float64(total) / float64(n*(n-1)), diameter, nil
}

// bfs returns hop distances from src (-1 for unreachable nodes) and the
// nodes in the order they were dequeued.
func (g *Graph) bfs(src int) (dist []int, order []int) {
	n := g.NumNodes()
	dist = make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	order = make([]int, 0, n)

	dist[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)

		for _, w := range g.neighbors[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
		}
	}

	return dist, order
}
