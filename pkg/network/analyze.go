package network

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Stage names reported to FallbackCallback.
const (
	StageStructure   = "structure"
	StageCommunities = "communities"
	StageCentrality  = "centrality"
	StageEigenvector = "eigenvector"
	StagePrediction  = "prediction"
)

// FallbackCallback is invoked whenever a stage substitutes its default
// result for a failed computation.
type FallbackCallback func(stage string, err error)

// Options controls an analysis run.
type Options struct {
	TopN                 int
	PredictionNodeLimit  int
	EigenvectorMaxIter   int
	EigenvectorTolerance float64
	Parallel             bool
	CommunityAlgorithm   string
	Logger               zerolog.Logger
	OnFallback           FallbackCallback
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		TopN:                 5,
		PredictionNodeLimit:  1000,
		EigenvectorMaxIter:   1000,
		EigenvectorTolerance: 1e-6,
		Parallel:             true,
		CommunityAlgorithm:   CommunityGreedy,
		Logger:               log.Logger,
	}
}

// AnalyzeEdges builds a graph from rows and analyzes it.
func AnalyzeEdges(rows []RawEdge, opts Options) *Report {
	return Analyze(BuildGraph(rows), opts)
}

// Analyze computes the full report for g. The structural, community,
// centrality and prediction stages only read g, so they run concurrently
// when opts.Parallel is set. A failing stage never aborts the report: it is
// replaced by its documented default and reported through opts.OnFallback.
func Analyze(g *Graph, opts Options) *Report {
	start := time.Now()
	logger := opts.Logger.With().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Logger()

	var (
		structure   Structure
		communities CommunityResult
		centrality  Centralities
		predictions []Prediction
	)

	stages := []struct {
		name string
		run  func() error
		fail func()
	}{
		{
			name: StageStructure,
			run: func() error {
				structure = ComputeStructure(g)
				return nil
			},
			fail: func() {
				structure = Structure{
					Nodes:     g.NumNodes(),
					Edges:     g.NumEdges(),
					Density:   Density(g),
					AvgDegree: AverageDegree(g),
				}
			},
		},
		{
			name: StageCommunities,
			run: func() error {
				p, err := DetectCommunities(g, opts.CommunityAlgorithm)
				if err != nil {
					return err
				}
				communities = CommunityResult{Partition: p, Modularity: Modularity(g, p)}
				return nil
			},
			fail: func() { communities = CommunityResult{} },
		},
		{
			name: StageCentrality,
			run: func() error {
				centrality = computeCentralities(g, opts, logger)
				return nil
			},
			fail: func() { centrality = zeroCentralities(g.NumNodes()) },
		},
		{
			name: StagePrediction,
			run: func() error {
				predictions = PredictLinks(g, opts.PredictionNodeLimit, opts.TopN)
				return nil
			},
			fail: func() { predictions = []Prediction{} },
		},
	}

	if opts.Parallel {
		var eg errgroup.Group
		for _, st := range stages {
			st := st
			eg.Go(func() error {
				runStage(st.name, st.run, st.fail, opts, logger)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for _, st := range stages {
			runStage(st.name, st.run, st.fail, opts, logger)
		}
	}

	report := newReport(g, structure, communities, centrality, predictions, opts.TopN)

	logger.Debug().
		Int("communities", report.CommunityCount).
		Int("predictions", len(report.Predictions)).
		Dur("duration", time.Since(start)).
		Msg("Graph analysis complete")

	return report
}

// runStage executes one stage, converting an error or panic into its
// fallback result.
func runStage(name string, run func() error, fail func(), opts Options, logger zerolog.Logger) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s stage panicked: %v", name, r)
			}
		}()
		return run()
	}()

	if err != nil {
		fail()
		logger.Warn().Err(err).Str("stage", name).Msg("Analysis stage failed, using fallback")
		if opts.OnFallback != nil {
			opts.OnFallback(name, err)
		}
		return
	}

	logger.Debug().Str("stage", name).Dur("duration", time.Since(start)).Msg("Analysis stage finished")
}

func computeCentralities(g *Graph, opts Options, logger zerolog.Logger) Centralities {
	c := Centralities{
		Degree:      DegreeCentrality(g),
		Betweenness: BetweennessCentrality(g),
		Closeness:   ClosenessCentrality(g),
	}

	eig, err := EigenvectorCentrality(g, opts.EigenvectorMaxIter, opts.EigenvectorTolerance)
	if err != nil {
		// Non-convergence substitutes degree centrality for the whole map.
		logger.Warn().Err(err).Int("max_iter", opts.EigenvectorMaxIter).Msg("Eigenvector centrality fell back to degree centrality")
		if opts.OnFallback != nil {
			opts.OnFallback(StageEigenvector, err)
		}
		eig = c.Degree
		c.EigenvectorFallback = true
	}
	c.Eigenvector = eig

	return c
}

func zeroCentralities(n int) Centralities {
	return Centralities{
		Degree:      make([]float64, n),
		Betweenness: make([]float64, n),
		Closeness:   make([]float64, n),
		Eigenvector: make([]float64, n),
	}
}
