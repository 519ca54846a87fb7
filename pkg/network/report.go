package network

import (
	"fmt"
	"sort"
)

// Report is the complete analysis of one graph. It is assembled once at the
// end of Analyze and must be treated as read-only by callers.
type Report struct {
	Nodes               []string           `json:"nodes"`
	Edges               [][2]string        `json:"edges"`
	Metrics             Metrics            `json:"metrics"`
	DegreeCentrality    map[string]float64 `json:"degree_centrality"`
	Communities         map[string]int     `json:"communities"`
	CommunityCount      int                `json:"community_count"`
	Predictions         []Prediction       `json:"predictions"`
	TopNodes            []NodeCentrality   `json:"top_nodes"`
	MostCentral         string             `json:"most_central"`
	HighestBetweenness  string             `json:"highest_betweenness"`
	HighestCloseness    string             `json:"highest_closeness"`
	EigenvectorFallback bool               `json:"eigenvector_fallback"`
}

// Metrics is the scalar summary of a Report.
type Metrics struct {
	Nodes         int     `json:"nodes"`
	Edges         int     `json:"edges"`
	Density       float64 `json:"density"`
	AvgPathLength float64 `json:"avg_path_length"`
	Modularity    float64 `json:"modularity"`
	Diameter      int     `json:"diameter"`
	AvgDegree     float64 `json:"avg_degree"`
}

// NodeCentrality bundles the four centrality scores of one node.
type NodeCentrality struct {
	Node        string  `json:"node"`
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Closeness   float64 `json:"closeness"`
	Eigenvector float64 `json:"eigenvector"`
}

// Centralities holds per-node scores indexed by discovery order.
type Centralities struct {
	Degree              []float64
	Betweenness         []float64
	Closeness           []float64
	Eigenvector         []float64
	EigenvectorFallback bool
}

// CommunityResult is the outcome of the community stage. A failed detection
// is represented by a nil Partition and zero modularity.
type CommunityResult struct {
	Partition  *Partition
	Modularity float64
}

func newReport(g *Graph, s Structure, cr CommunityResult, c Centralities, preds []Prediction, topN int) *Report {
	r := &Report{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
		Metrics: Metrics{
			Nodes:         s.Nodes,
			Edges:         s.Edges,
			Density:       s.Density,
			AvgPathLength: s.AvgPathLength,
			Modularity:    cr.Modularity,
			Diameter:      s.Diameter,
			AvgDegree:     s.AvgDegree,
		},
		DegreeCentrality:    make(map[string]float64, g.NumNodes()),
		Communities:         make(map[string]int),
		Predictions:         preds,
		EigenvectorFallback: c.EigenvectorFallback,
	}
	if r.Predictions == nil {
		r.Predictions = []Prediction{}
	}

	for i, score := range c.Degree {
		r.DegreeCentrality[g.NodeID(i)] = score
	}

	if cr.Partition != nil {
		for i, comm := range cr.Partition.Assignment {
			r.Communities[g.NodeID(i)] = comm
		}
		r.CommunityCount = cr.Partition.Len()
	}

	r.TopNodes = topNodes(g, c, topN)
	r.MostCentral = summarize(g, c.Degree)
	r.HighestBetweenness = summarize(g, c.Betweenness)
	r.HighestCloseness = summarize(g, c.Closeness)

	return r
}

// topNodes ranks nodes by degree centrality (stable on discovery order).
func topNodes(g *Graph, c Centralities, limit int) []NodeCentrality {
	n := g.NumNodes()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return c.Degree[order[x]] > c.Degree[order[y]]
	})

	if limit < 0 {
		limit = 0
	}
	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]NodeCentrality, len(order))
	for k, i := range order {
		out[k] = NodeCentrality{
			Node:        g.NodeID(i),
			Degree:      scoreAt(c.Degree, i),
			Betweenness: scoreAt(c.Betweenness, i),
			Closeness:   scoreAt(c.Closeness, i),
			Eigenvector: scoreAt(c.Eigenvector, i),
		}
	}
	return out
}

// summarize formats the first node holding the maximum score.
func summarize(g *Graph, scores []float64) string {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return fmt.Sprintf("%s (%.3f)", g.NodeID(best), scores[best])
}

func scoreAt(scores []float64, i int) float64 {
	if i < len(scores) {
		return scores[i]
	}
	return 0
}
