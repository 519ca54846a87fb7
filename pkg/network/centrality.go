package network

import (
	"gonum.org/v1/gonum/floats"
)

// DegreeCentrality returns deg(v)/(|V|-1) for every node, indexed by
// discovery order. Every score is 0 when the graph has at most one node.
func DegreeCentrality(g *Graph) []float64 {
	n := g.NumNodes()
	scores := make([]float64, n)
	if n <= 1 {
		return scores
	}

	s := 1 / float64(n-1)
	for i := range scores {
		scores[i] = float64(g.Degree(i)) * s
	}
	return scores
}

// BetweennessCentrality computes normalized betweenness centrality for all
// nodes using Brandes' algorithm.
//
// Dependencies are accumulated from every source, so each unordered pair is
// counted twice; dividing by (n-1)(n-2) therefore yields the undirected
// normalization 2/((n-1)(n-2)). Graphs with fewer than three nodes score 0.
func BetweennessCentrality(g *Graph) []float64 {
	n := g.NumNodes()
	cb := make([]float64, n)
	if n < 3 {
		return cb
	}

	for s := 0; s < n; s++ {
		stack, sigma, pred := g.brandesBFS(s)
		brandesAccumulate(s, stack, sigma, pred, cb)
	}

	norm := float64((n - 1) * (n - 2))
	for i := range cb {
		cb[i] /= norm
	}
	return cb
}

// brandesBFS performs the BFS phase of Brandes' algorithm from source s.
// It returns the visit stack, shortest-path counts and predecessor lists.
func (g *Graph) brandesBFS(s int) ([]int, []float64, [][]int) {
	n := g.NumNodes()
	stack := make([]int, 0, n)
	pred := make([][]int, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	sigma[s] = 1
	dist[s] = 0

	queue := []int{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, w := range g.neighbors[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	return stack, sigma, pred
}

// brandesAccumulate back-propagates pair dependencies from the visit stack.
func brandesAccumulate(s int, stack []int, sigma []float64, pred [][]int, cb []float64) {
	delta := make([]float64, len(sigma))

	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}

// ClosenessCentrality returns the Wasserman-Faust closeness of every node:
// the inverse mean distance to the r-1 nodes it can reach, scaled by
// (r-1)/(n-1) so that nodes in small components are not over-rated.
func ClosenessCentrality(g *Graph) []float64 {
	n := g.NumNodes()
	scores := make([]float64, n)
	if n <= 1 {
		return scores
	}

	for u := 0; u < n; u++ {
		dist, order := g.bfs(u)

		total := 0
		for _, v := range order {
			total += dist[v]
		}
		if total == 0 {
			continue
		}

		reach := float64(len(order) - 1)
		scores[u] = (reach / float64(total)) * (reach / float64(n-1))
	}
	return scores
}

// EigenvectorCentrality computes the principal eigenvector of the adjacency
// matrix by power iteration on A+I, starting from the uniform vector.
//
// Iteration stops once the L1 change between successive normalized vectors
// drops below n*tol. ErrNotConverged is returned after maxIter iterations.
// An empty graph yields an empty result.
func EigenvectorCentrality(g *Graph, maxIter int, tol float64) ([]float64, error) {
	n := g.NumNodes()
	if n == 0 {
		return []float64{}, nil
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	last := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		copy(last, x)
		for u := 0; u < n; u++ {
			for _, v := range g.neighbors[u] {
				x[v] += last[u]
			}
		}

		norm := floats.Norm(x, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, x)

		if floats.Distance(x, last, 1) < float64(n)*tol {
			return x, nil
		}
	}

	return nil, ErrNotConverged
}
