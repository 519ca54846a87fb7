package network

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceAllocation(t *testing.T) {
	g := BuildGraph(edges("X", "A", "X", "B", "X", "C", "A", "Y", "B", "Y"))
	a, _ := g.Index("A")
	b, _ := g.Index("B")
	c, _ := g.Index("C")

	// A and B share X (degree 3) and Y (degree 2).
	assert.InDelta(t, 1.0/3.0+1.0/2.0, ResourceAllocation(g, a, b), 1e-12)
	assert.InDelta(t, 1.0/3.0, ResourceAllocation(g, a, c), 1e-12)
	assert.Equal(t, ResourceAllocation(g, a, b), ResourceAllocation(g, b, a))
}

func TestPredictLinksStar(t *testing.T) {
	g := BuildGraph(edges("X", "A", "X", "B", "X", "C", "X", "D"))

	got := PredictLinks(g, 1000, 5)

	want := []Prediction{
		{Source: "A", Target: "B", Probability: 25},
		{Source: "A", Target: "C", Probability: 25},
		{Source: "A", Target: "D", Probability: 25},
		{Source: "B", Target: "C", Probability: 25},
		{Source: "B", Target: "D", Probability: 25},
	}
	assert.Equal(t, want, got)
}

func TestPredictLinksOrdering(t *testing.T) {
	got := PredictLinks(BuildGraph(pathRows(4)), 1000, 5)

	want := []Prediction{
		{Source: "n0", Target: "n2", Probability: 50},
		{Source: "n1", Target: "n3", Probability: 50},
		{Source: "n0", Target: "n3", Probability: 0},
	}
	assert.Equal(t, want, got)
}

func TestPredictLinksClampsAndRounds(t *testing.T) {
	g := BuildGraph(edges(
		"u", "w1", "u", "w2", "u", "w3",
		"v", "w1", "v", "w2", "v", "w3",
	))

	got := PredictLinks(g, 1000, 5)
	require.Len(t, got, 4)

	assert.Equal(t, Prediction{Source: "u", Target: "v", Probability: 100}, got[0])
	for _, p := range got[1:] {
		assert.Equal(t, 66.67, p.Probability)
	}
}

func TestPredictLinksInvariants(t *testing.T) {
	for _, fx := range fixtureGraphs() {
		t.Run(fx.Name, func(t *testing.T) {
			g := BuildGraph(fx.Rows)
			got := PredictLinks(g, 1000, 5)

			assert.LessOrEqual(t, len(got), 5)
			for k, p := range got {
				u, ok := g.Index(p.Source)
				require.True(t, ok)
				v, ok := g.Index(p.Target)
				require.True(t, ok)

				assert.NotEqual(t, u, v, "self pair predicted")
				assert.False(t, g.HasEdge(u, v), "existing edge %s-%s predicted", p.Source, p.Target)
				assert.GreaterOrEqual(t, p.Probability, 0.0)
				assert.LessOrEqual(t, p.Probability, 100.0)
				if k > 0 {
					assert.GreaterOrEqual(t, got[k-1].Probability, p.Probability)
				}
			}
		})
	}
}

// referencePredictions scores every non-adjacent pair with
// ResourceAllocation and ranks them with a stable sort.
func referencePredictions(g *Graph, topN int) []Prediction {
	var all []Prediction
	for u := 0; u < g.NumNodes(); u++ {
		for v := u + 1; v < g.NumNodes(); v++ {
			if g.HasEdge(u, v) {
				continue
			}
			all = append(all, Prediction{
				Source:      g.NodeID(u),
				Target:      g.NodeID(v),
				Probability: toProbability(ResourceAllocation(g, u, v)),
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Probability > all[j].Probability })
	if len(all) > topN {
		all = all[:topN]
	}
	return all
}

func TestPredictLinksMatchesResourceAllocation(t *testing.T) {
	graphs := append(fixtureGraphs(), namedGraph{
		Name: "TrianglesWithTail",
		Rows: edges("a", "b", "b", "c", "c", "a", "c", "d", "d", "e", "e", "f", "f", "d", "f", "g", "g", "h", "b", "h"),
	})

	for _, fx := range graphs {
		t.Run(fx.Name, func(t *testing.T) {
			g := BuildGraph(fx.Rows)
			for _, topN := range []int{1, 5, 50} {
				got := PredictLinks(g, 1000, topN)
				want := referencePredictions(g, topN)

				require.Len(t, got, len(want), "topN=%d", topN)
				for k := range want {
					assert.Equal(t, want[k].Source, got[k].Source, "topN=%d rank %d", topN, k)
					assert.Equal(t, want[k].Target, got[k].Target, "topN=%d rank %d", topN, k)
					assert.InDelta(t, want[k].Probability, got[k].Probability, 1e-9)
				}
			}
		})
	}
}

func TestPredictLinksNodeLimit(t *testing.T) {
	assert.Empty(t, PredictLinks(BuildGraph(pathRows(1000)), 1000, 5))
	assert.Len(t, PredictLinks(BuildGraph(pathRows(999)), 1000, 5), 5)
	assert.Empty(t, PredictLinks(BuildGraph(pathRows(10)), 10, 5))
	assert.Empty(t, PredictLinks(BuildGraph(pathRows(10)), 1000, 0))
}

func BenchmarkPredictLinks(b *testing.B) {
	g := BuildGraph(append(pathRows(900), completeRows(40)...))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PredictLinks(g, 1000, 5)
	}
}
