package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/mat"
)

func TestDegreeCentrality(t *testing.T) {
	tests := []struct {
		name string
		rows []RawEdge
		want []float64
	}{
		{"Empty", nil, []float64{}},
		{"SingleNode", edges("a", "a"), []float64{0}},
		{"Triangle", edges("A", "B", "B", "C", "C", "A"), []float64{1, 1, 1}},
		{"Star", edges("X", "A", "X", "B", "X", "C", "X", "D"), []float64{1, 0.25, 0.25, 0.25, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DegreeCentrality(BuildGraph(tt.rows))
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestBetweennessCentrality(t *testing.T) {
	tests := []struct {
		name string
		rows []RawEdge
		want []float64
	}{
		{"SingleEdge", edges("a", "b"), []float64{0, 0}},
		{"Path3", pathRows(3), []float64{0, 1, 0}},
		{"Triangle", edges("A", "B", "B", "C", "C", "A"), []float64{0, 0, 0}},
		{"Star", edges("X", "A", "X", "B", "X", "C", "X", "D"), []float64{1, 0, 0, 0, 0}},
		// Interior nodes of a 4-path each lie on 2 of the 3 pairs they do not touch.
		{"Path4", pathRows(4), []float64{0, 2.0 / 3.0, 2.0 / 3.0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BetweennessCentrality(BuildGraph(tt.rows))
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestBetweennessSplitsShortestPaths(t *testing.T) {
	// Square a-b-c-d-a: every opposite pair has two shortest paths.
	g := BuildGraph(edges("a", "b", "b", "c", "c", "d", "d", "a"))

	got := BetweennessCentrality(g)
	for i, score := range got {
		assert.InDelta(t, 1.0/6.0, score, 1e-12, "node %s", g.NodeID(i))
	}
}

func TestClosenessCentrality(t *testing.T) {
	tests := []struct {
		name string
		rows []RawEdge
		want []float64
	}{
		{"Triangle", edges("A", "B", "B", "C", "C", "A"), []float64{1, 1, 1}},
		{"Star", edges("X", "A", "X", "B", "X", "C", "X", "D"), []float64{1, 4.0 / 7.0, 4.0 / 7.0, 4.0 / 7.0, 4.0 / 7.0}},
		{"TwoDisjointEdges", edges("A", "B", "C", "D"), []float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0}},
		{"IsolatedNode", edges("A", "B", "C", "C"), []float64{0.5, 0.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosenessCentrality(BuildGraph(tt.rows))
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestEigenvectorCentrality(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got, err := EigenvectorCentrality(BuildGraph(nil), 100, 1e-6)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Triangle", func(t *testing.T) {
		got, err := EigenvectorCentrality(BuildGraph(edges("A", "B", "B", "C", "C", "A")), 1000, 1e-6)
		require.NoError(t, err)
		want := 1 / math.Sqrt(3)
		assert.InDeltaSlice(t, []float64{want, want, want}, got, 1e-9)
	})

	t.Run("Star", func(t *testing.T) {
		got, err := EigenvectorCentrality(BuildGraph(edges("X", "A", "X", "B", "X", "C", "X", "D")), 1000, 1e-6)
		require.NoError(t, err)
		assert.InDelta(t, 1/math.Sqrt2, got[0], 1e-4)
		for _, leaf := range got[1:] {
			assert.InDelta(t, 1/(2*math.Sqrt2), leaf, 1e-4)
			assert.Less(t, leaf, got[0])
		}
	})

	t.Run("NotConverged", func(t *testing.T) {
		_, err := EigenvectorCentrality(BuildGraph(edges("A", "B", "B", "C", "C", "A")), 1, 1e-6)
		assert.ErrorIs(t, err, ErrNotConverged)
	})
}

// Unnormalized Brandes scores from gonum sum over ordered pairs, so they
// differ from ours by exactly (n-1)(n-2).
func TestBetweennessMatchesGonum(t *testing.T) {
	for _, fx := range fixtureGraphs() {
		if fx.Nodes < 3 {
			continue
		}
		t.Run(fx.Name, func(t *testing.T) {
			g := BuildGraph(fx.Rows)
			got := BetweennessCentrality(g)
			reference := network.Betweenness(g.Undirected())

			scale := float64((g.NumNodes() - 1) * (g.NumNodes() - 2))
			for i, score := range got {
				assert.InDelta(t, reference[int64(i)]/scale, score, 1e-12, "node %s", g.NodeID(i))
			}
		})
	}
}

// The principal eigenvector of A+I is the fixed point of the power
// iteration.
func TestEigenvectorMatchesEigenSym(t *testing.T) {
	for _, fx := range fixtureGraphs() {
		if fx.Edges == 0 || fx.Name == "TwoDisjointEdges" {
			continue
		}
		t.Run(fx.Name, func(t *testing.T) {
			g := BuildGraph(fx.Rows)
			n := g.NumNodes()

			a := mat.NewSymDense(n, nil)
			for i := 0; i < n; i++ {
				a.SetSym(i, i, 1)
				for _, j := range g.Neighbors(i) {
					a.SetSym(i, j, 1)
				}
			}

			var es mat.EigenSym
			require.True(t, es.Factorize(a, true))
			var vecs mat.Dense
			es.VectorsTo(&vecs)

			got, err := EigenvectorCentrality(g, 1000, 1e-6)
			require.NoError(t, err)

			// eigenvalues are ascending; the last column is the principal vector
			for i := 0; i < n; i++ {
				assert.InDelta(t, math.Abs(vecs.At(i, n-1)), got[i], 1e-4, "node %s", g.NodeID(i))
			}
		})
	}
}

func BenchmarkBetweennessCentrality(b *testing.B) {
	g := BuildGraph(completeRows(80))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BetweennessCentrality(g)
	}
}
