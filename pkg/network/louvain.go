package network

import (
	"fmt"
	"sort"
)

// Community detection algorithms selectable through Options.
const (
	CommunityGreedy  = "greedy"
	CommunityLouvain = "louvain"
)

const (
	louvainMaxLevels = 32
	louvainMaxPasses = 100
)

// DetectCommunities partitions g with the named algorithm. An empty name
// selects the greedy modularity method.
func DetectCommunities(g *Graph, algorithm string) (*Partition, error) {
	switch algorithm {
	case "", CommunityGreedy:
		return GreedyModularityCommunities(g)
	case CommunityLouvain:
		return LouvainCommunities(g)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// LouvainCommunities partitions g with the multi-level Louvain method. Each
// level moves nodes between neighbouring communities while modularity
// improves, then collapses communities into super nodes. Nodes are visited in
// index order and ties keep the first candidate, so the result is
// deterministic.
func LouvainCommunities(g *Graph) (*Partition, error) {
	if g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}
	if g.NumEdges() == 0 {
		return nil, ErrNoEdges
	}

	level := newLevelGraph(g)
	// node index -> super node at the current level
	owner := make([]int, g.NumNodes())
	for i := range owner {
		owner[i] = i
	}

	for l := 0; l < louvainMaxLevels; l++ {
		state := newLouvainState(level)
		if !state.optimize() {
			break
		}

		n2c := state.compact()
		for i := range owner {
			owner[i] = n2c[owner[i]]
		}
		level = level.aggregate(n2c, state.count)
		if level.size() == 1 {
			break
		}
	}

	groups := make([][]int, level.size())
	for i, c := range owner {
		groups[c] = append(groups[c], i)
	}
	return newPartition(groups, g.NumNodes()), nil
}

type weightedEdge struct {
	to     int
	weight float64
}

// levelGraph is a weighted graph of super nodes. loops[i] holds the weight
// of edges collapsed inside node i, each counted once.
type levelGraph struct {
	adj   [][]weightedEdge
	loops []float64
	total float64 // sum of all edge weights, loops included
}

func newLevelGraph(g *Graph) *levelGraph {
	n := g.NumNodes()
	lg := &levelGraph{
		adj:   make([][]weightedEdge, n),
		loops: make([]float64, n),
		total: float64(g.NumEdges()),
	}
	for i := 0; i < n; i++ {
		for _, j := range g.Neighbors(i) {
			lg.adj[i] = append(lg.adj[i], weightedEdge{to: j, weight: 1})
		}
		sort.Slice(lg.adj[i], func(x, y int) bool { return lg.adj[i][x].to < lg.adj[i][y].to })
	}
	return lg
}

func (lg *levelGraph) size() int { return len(lg.adj) }

func (lg *levelGraph) strength(i int) float64 {
	k := 2 * lg.loops[i]
	for _, e := range lg.adj[i] {
		k += e.weight
	}
	return k
}

// aggregate collapses every community of n2c into a single node.
func (lg *levelGraph) aggregate(n2c []int, count int) *levelGraph {
	weights := make([]map[int]float64, count)
	for c := range weights {
		weights[c] = make(map[int]float64)
	}
	next := &levelGraph{
		adj:   make([][]weightedEdge, count),
		loops: make([]float64, count),
		total: lg.total,
	}

	for i, edges := range lg.adj {
		ci := n2c[i]
		next.loops[ci] += lg.loops[i]
		for _, e := range edges {
			if e.to < i {
				continue
			}
			cj := n2c[e.to]
			if ci == cj {
				next.loops[ci] += e.weight
				continue
			}
			weights[ci][cj] += e.weight
			weights[cj][ci] += e.weight
		}
	}

	for c, m := range weights {
		for d, w := range m {
			next.adj[c] = append(next.adj[c], weightedEdge{to: d, weight: w})
		}
		sort.Slice(next.adj[c], func(x, y int) bool { return next.adj[c][x].to < next.adj[c][y].to })
	}
	return next
}

// louvainState is the local-moving bookkeeping for one level: N2C maps a
// node to its community and Tot holds the summed strength per community.
type louvainState struct {
	graph    *levelGraph
	n2c      []int
	tot      []float64
	strength []float64
	count    int
}

func newLouvainState(lg *levelGraph) *louvainState {
	n := lg.size()
	s := &louvainState{
		graph:    lg,
		n2c:      make([]int, n),
		tot:      make([]float64, n),
		strength: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.n2c[i] = i
		s.strength[i] = lg.strength(i)
		s.tot[i] = s.strength[i]
	}
	return s
}

// optimize runs local-moving passes until a pass makes no move. It reports
// whether any node changed community.
func (s *louvainState) optimize() bool {
	twoM := 2 * s.graph.total
	moved := false

	for pass := 0; pass < louvainMaxPasses; pass++ {
		moves := 0
		for i := range s.n2c {
			if s.move(i, twoM) {
				moves++
			}
		}
		if moves == 0 {
			break
		}
		moved = true
	}
	return moved
}

// move relocates node i to the neighbouring community with the best
// modularity gain. It returns true when i changed community.
func (s *louvainState) move(i int, twoM float64) bool {
	current := s.n2c[i]
	k := s.strength[i]

	// weight from i to each neighbouring community, first-seen order
	links := map[int]float64{current: 0}
	order := []int{current}
	for _, e := range s.graph.adj[i] {
		c := s.n2c[e.to]
		if _, ok := links[c]; !ok {
			order = append(order, c)
		}
		links[c] += e.weight
	}

	s.tot[current] -= k
	best, bestGain := current, links[current]-s.tot[current]*k/twoM
	for _, c := range order[1:] {
		gain := links[c] - s.tot[c]*k/twoM
		if gain > bestGain {
			best, bestGain = c, gain
		}
	}
	s.tot[best] += k
	s.n2c[i] = best

	return best != current
}

// compact renumbers communities 0..count-1 in order of first member.
func (s *louvainState) compact() []int {
	ids := make(map[int]int)
	out := make([]int, len(s.n2c))
	for i, c := range s.n2c {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	s.count = len(ids)
	return out
}
