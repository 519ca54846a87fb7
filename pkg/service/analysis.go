// Package service implements the analysis and account workflows behind the API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/network-analysis-service/pkg/models"
	"github.com/gilchrisn/network-analysis-service/pkg/network"
	"github.com/gilchrisn/network-analysis-service/pkg/parser"
)

// Analysis sources
const (
	SourceUpload = "upload"
	SourceSample = "sample"
	SourceFile   = "file"
)

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrInvalidPath     = errors.New("invalid file path")
	ErrSampleNotFound  = errors.New("sample file not found")
)

// AnalysisObserver receives analysis outcomes, e.g. for metrics.
type AnalysisObserver interface {
	ObserveAnalysis(source, outcome string, nodes int, duration time.Duration)
	ObserveFallback(stage string)
}

// AnalysisService parses edge lists and runs the graph analysis with a
// bounded number of concurrent runs.
type AnalysisService struct {
	uploadDir string
	sampleDir string
	options   network.Options
	workers   chan struct{}
	observer  AnalysisObserver
}

// NewAnalysisService creates a new analysis service. maxWorkers bounds the
// number of analyses running at once.
func NewAnalysisService(uploadDir, sampleDir string, maxWorkers int, options network.Options, observer AnalysisObserver) *AnalysisService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &AnalysisService{
		uploadDir: uploadDir,
		sampleDir: sampleDir,
		options:   options,
		workers:   make(chan struct{}, maxWorkers),
		observer:  observer,
	}
}

// MaxWorkers returns the concurrency bound.
func (s *AnalysisService) MaxWorkers() int { return cap(s.workers) }

// AnalyzeUpload stores an uploaded edge list under the upload directory and
// analyzes it. The file is saved as "<uuid>_<base name of filename>".
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, filename string, src io.Reader) (*network.Report, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Each upload gets its own file so concurrent requests never share one.
	destPath := filepath.Join(s.uploadDir, uuid.New().String()+"_"+name)
	if err := saveFile(destPath, src); err != nil {
		return nil, err
	}

	log.Info().
		Str("filename", name).
		Str("path", destPath).
		Msg("Upload saved")

	return s.AnalyzeFile(ctx, SourceUpload, destPath)
}

// AnalyzeSample analyzes a file from the sample directory. Names that
// resolve outside the directory are rejected.
func (s *AnalysisService) AnalyzeSample(ctx context.Context, name string) (*network.Report, error) {
	path, err := s.resolveSample(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, ErrSampleNotFound
	}

	return s.AnalyzeFile(ctx, SourceSample, path)
}

// ListSamples returns the regular files in the sample directory.
func (s *AnalysisService) ListSamples() ([]models.SampleInfo, error) {
	entries, err := os.ReadDir(s.sampleDir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.SampleInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}

	samples := make([]models.SampleInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		samples = append(samples, models.SampleInfo{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })

	return samples, nil
}

// AnalyzeFile parses and analyzes the edge list at path. It waits for a free
// worker slot or for ctx to be done.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, source, path string) (*network.Report, error) {
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()
	runID := uuid.New().String()
	logger := log.With().
		Str("run_id", runID).
		Str("source", source).
		Str("file", filepath.Base(path)).
		Logger()

	rows, err := parser.ParseEdgeListFile(path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse edge list")
		s.observe(source, "error", 0, time.Since(start))
		return nil, err
	}

	opts := s.options
	opts.Logger = logger
	userFallback := opts.OnFallback
	opts.OnFallback = func(stage string, err error) {
		if s.observer != nil {
			s.observer.ObserveFallback(stage)
		}
		if userFallback != nil {
			userFallback(stage, err)
		}
	}

	g := network.BuildGraph(rows)
	report := network.Analyze(g, opts)

	stats := g.Stats()
	logger.Info().
		Int("rows", stats.Rows).
		Int("skipped_rows", stats.SkippedRows).
		Int("nodes", report.Metrics.Nodes).
		Int("edges", report.Metrics.Edges).
		Int("communities", report.CommunityCount).
		Dur("duration", time.Since(start)).
		Msg("Analysis completed")

	s.observe(source, "success", report.Metrics.Nodes, time.Since(start))
	return report, nil
}

func (s *AnalysisService) observe(source, outcome string, nodes int, d time.Duration) {
	if s.observer != nil {
		s.observer.ObserveAnalysis(source, outcome, nodes, d)
	}
}

// resolveSample joins name onto the sample directory and checks that the
// result stays inside it.
func (s *AnalysisService) resolveSample(name string) (string, error) {
	base, err := filepath.Abs(s.sampleDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sample directory: %w", err)
	}
	target, err := filepath.Abs(filepath.Join(s.sampleDir, name))
	if err != nil {
		return "", ErrInvalidPath
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return target, nil
}

func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "", ErrInvalidFilename
	}
	return name, nil
}

func saveFile(destPath string, src io.Reader) error {
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
