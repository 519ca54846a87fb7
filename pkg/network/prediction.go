package network

import (
	"math"
)

// Prediction is a scored candidate for a missing edge.
type Prediction struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Probability float64 `json:"probability"`
}

// ResourceAllocation returns the resource-allocation index of nodes u and v:
// the sum of 1/deg(w) over their common neighbours w.
func ResourceAllocation(g *Graph, u, v int) float64 {
	a, b := g.neighbors[u], g.neighbors[v]
	if len(a) > len(b) {
		a, b = b, a
		u, v = v, u
	}

	var score float64
	for _, w := range a {
		if w != v && g.HasEdge(w, v) {
			score += 1 / float64(g.Degree(w))
		}
	}
	return score
}

// PredictLinks scores every pair of distinct, non-adjacent nodes by the
// resource-allocation index and returns the topN best as percentages in
// [0, 100] rounded to two decimals. Pairs are generated in discovery order
// and ties keep that order. Graphs with nodeLimit or more nodes are skipped.
func PredictLinks(g *Graph, nodeLimit, topN int) []Prediction {
	n := g.NumNodes()
	if n >= nodeLimit || topN <= 0 {
		return []Prediction{}
	}

	top := make([]Prediction, 0, topN)
	scores := make([]float64, n)
	touched := make([]int, 0, n)

	for u := 0; u < n; u++ {
		// Accumulate scores for every v > u reachable in two hops.
		for _, w := range g.neighbors[u] {
			inc := 1 / float64(g.Degree(w))
			for _, v := range g.neighbors[w] {
				if v <= u {
					continue
				}
				if scores[v] == 0 {
					touched = append(touched, v)
				}
				scores[v] += inc
			}
		}

		for v := u + 1; v < n; v++ {
			if g.HasEdge(u, v) {
				continue
			}
			p := toProbability(scores[v])
			if len(top) == topN && p <= top[len(top)-1].Probability {
				continue
			}
			top = insertRanked(top, topN, Prediction{
				Source:      g.ids[u],
				Target:      g.ids[v],
				Probability: p,
			})
		}

		for _, v := range touched {
			scores[v] = 0
		}
		touched = touched[:0]
	}

	return top
}

// toProbability converts a similarity score into a clamped percentage.
func toProbability(score float64) float64 {
	p := math.Round(score*100*100) / 100
	return math.Min(100, math.Max(0, p))
}

// insertRanked inserts p after every entry with an equal or higher
// probability and truncates to limit.
func insertRanked(top []Prediction, limit int, p Prediction) []Prediction {
	pos := len(top)
	for pos > 0 && top[pos-1].Probability < p.Probability {
		pos--
	}

	if len(top) < limit {
		top = append(top, Prediction{})
	}
	if pos >= len(top) {
		return top
	}
	copy(top[pos+1:], top[pos:len(top)-1])
	top[pos] = p
	return top
}
