package network

import (
	"container/heap"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// Partition is a disjoint assignment of nodes to communities.
type Partition struct {
	Communities [][]int // node indices per community, largest first
	Assignment  []int   // node index -> community index
}

// Len returns the number of communities.
func (p *Partition) Len() int { return len(p.Communities) }

// GreedyModularityCommunities partitions g with the Clauset-Newman-Moore
// greedy agglomeration: every node starts in its own community and the pair
// of adjacent communities with the largest modularity gain is merged until no
// merge increases modularity.
//
// Communities are ordered by size (descending) and then by their lowest node
// index, so the result is deterministic for a given graph.
func GreedyModularityCommunities(g *Graph) (*Partition, error) {
	if g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}
	if g.NumEdges() == 0 {
		return nil, ErrNoEdges
	}

	state := newMergeState(g)
	for {
		best, ok := state.popBest()
		if !ok || best.gain <= 0 {
			break
		}
		state.merge(best.i, best.j)
	}

	return state.partition(), nil
}

// Modularity returns the Newman modularity (resolution 1) of p on g.
// An edgeless graph has modularity 0.
func Modularity(g *Graph, p *Partition) float64 {
	if g.NumEdges() == 0 || p == nil {
		return 0
	}

	communities := make([][]graph.Node, len(p.Communities))
	for c, members := range p.Communities {
		nodes := make([]graph.Node, len(members))
		for k, i := range members {
			nodes[k] = simple.Node(i)
		}
		communities[c] = nodes
	}

	return community.Q(g.g, communities, 1)
}

// mergeState tracks the agglomeration. gains[c][d] is the modularity change
// of merging adjacent communities c and d; a[c] is the fraction of edge ends
// attached to c.
type mergeState struct {
	gains   []map[int]float64
	a       []float64
	members [][]int
	alive   []bool
	queue   gainQueue
}

func newMergeState(g *Graph) *mergeState {
	n := g.NumNodes()
	q0 := 1 / (2 * float64(g.NumEdges()))

	s := &mergeState{
		gains:   make([]map[int]float64, n),
		a:       make([]float64, n),
		members: make([][]int, n),
		alive:   make([]bool, n),
	}

	for i := 0; i < n; i++ {
		s.gains[i] = make(map[int]float64, g.Degree(i))
		s.a[i] = float64(g.Degree(i)) * q0
		s.members[i] = []int{i}
		s.alive[i] = true
	}

	for _, e := range g.edges {
		u, v := e[0], e[1]
		ku, kv := float64(g.Degree(u)), float64(g.Degree(v))
		s.set(u, v, 2*q0-2*ku*kv*q0*q0)
	}

	return s
}

func (s *mergeState) set(c, d int, gain float64) {
	s.gains[c][d] = gain
	s.gains[d][c] = gain
	if c > d {
		c, d = d, c
	}
	heap.Push(&s.queue, gainEntry{gain: gain, i: c, j: d})
}

// popBest returns the current best merge, discarding stale queue entries.
func (s *mergeState) popBest() (gainEntry, bool) {
	for s.queue.Len() > 0 {
		e := heap.Pop(&s.queue).(gainEntry)
		if !s.alive[e.i] || !s.alive[e.j] {
			continue
		}
		if cur, ok := s.gains[e.i][e.j]; ok && cur == e.gain {
			return e, true
		}
	}
	return gainEntry{}, false
}

// merge folds one of the two communities into the other, keeping the one
// with more adjacent communities.
func (s *mergeState) merge(c, d int) {
	from, into := c, d
	if len(s.gains[from]) > len(s.gains[into]) {
		from, into = into, from
	}

	for k, gFrom := range s.gains[from] {
		if k == into {
			continue
		}
		if gInto, ok := s.gains[into][k]; ok {
			s.set(into, k, gFrom+gInto)
		} else {
			s.set(into, k, gFrom-2*s.a[into]*s.a[k])
		}
	}
	for k, gInto := range s.gains[into] {
		if k == from {
			continue
		}
		if _, ok := s.gains[from][k]; ok {
			continue
		}
		s.set(into, k, gInto-2*s.a[from]*s.a[k])
	}

	for k := range s.gains[from] {
		delete(s.gains[k], from)
	}
	s.gains[from] = nil

	s.a[into] += s.a[from]
	s.a[from] = 0
	s.members[into] = append(s.members[into], s.members[from]...)
	s.members[from] = nil
	s.alive[from] = false
}

func (s *mergeState) partition() *Partition {
	var groups [][]int
	for c, ok := range s.alive {
		if ok {
			groups = append(groups, s.members[c])
		}
	}
	return newPartition(groups, len(s.alive))
}

// newPartition orders groups by size (descending) and lowest member, and
// derives the node assignment. Empty groups are dropped.
func newPartition(groups [][]int, n int) *Partition {
	communities := make([][]int, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		members := append([]int(nil), group...)
		sort.Ints(members)
		communities = append(communities, members)
	}

	sort.SliceStable(communities, func(x, y int) bool {
		if len(communities[x]) != len(communities[y]) {
			return len(communities[x]) > len(communities[y])
		}
		return communities[x][0] < communities[y][0]
	})

	assignment := make([]int, n)
	for c, members := range communities {
		for _, i := range members {
			assignment[i] = c
		}
	}

	return &Partition{Communities: communities, Assignment: assignment}
}

type gainEntry struct {
	gain float64
	i, j int
}

// gainQueue is a max-heap on gain with index tie-breaking.
type gainQueue []gainEntry

func (q gainQueue) Len() int { return len(q) }

func (q gainQueue) Less(x, y int) bool {
	if q[x].gain != q[y].gain {
		return q[x].gain > q[y].gain
	}
	if q[x].i != q[y].i {
		return q[x].i < q[y].i
	}
	return q[x].j < q[y].j
}

func (q gainQueue) Swap(x, y int) { q[x], q[y] = q[y], q[x] }

func (q *gainQueue) Push(v any) { *q = append(*q, v.(gainEntry)) }

func (q *gainQueue) Pop() any {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}
