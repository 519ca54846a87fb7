package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, ":5000", c.ServerAddress())
	assert.Equal(t, "uploads", c.UploadDir())
	assert.Equal(t, "samples", c.SampleDir())
	assert.Equal(t, 5, c.TopN())
	assert.Equal(t, 1000, c.PredictionNodeLimit())
	assert.Equal(t, 1000, c.EigenvectorMaxIter())
	assert.InDelta(t, 1e-6, c.EigenvectorTolerance(), 1e-15)
	assert.True(t, c.Parallel())
	assert.Equal(t, "greedy", c.CommunityAlgorithm())
	assert.Equal(t, 30*time.Minute, c.SessionTTL())
	assert.False(t, c.RequireAuthForAnalysis())
	assert.Equal(t, "memory", c.UserStore())
	assert.Greater(t, c.MaxWorkers(), 0)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netanalyzer.yaml")
	content := []byte(`
server:
  address: ":9090"
analysis:
  top_n: 3
  parallel: false
auth:
  session_ttl: 10m
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	c := NewConfig()
	require.NoError(t, c.LoadFromFile(path))

	assert.Equal(t, ":9090", c.ServerAddress())
	assert.Equal(t, 3, c.TopN())
	assert.False(t, c.Parallel())
	assert.Equal(t, 10*time.Minute, c.SessionTTL())
	assert.Equal(t, 1000, c.PredictionNodeLimit(), "unset keys keep defaults")
}

func TestLoadFromMissingFile(t *testing.T) {
	c := NewConfig()
	assert.Error(t, c.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("NETANALYZER_SERVER_ADDRESS", ":7000")
	t.Setenv("NETANALYZER_ANALYSIS_TOP_N", "8")

	c := NewConfig()

	assert.Equal(t, ":7000", c.ServerAddress())
	assert.Equal(t, 8, c.TopN())
}

func TestSet(t *testing.T) {
	c := NewConfig()
	c.Set("storage.sample_dir", "/data/samples")
	assert.Equal(t, "/data/samples", c.SampleDir())
}

func TestCreateLogger(t *testing.T) {
	c := NewConfig()
	c.Set("logging.level", "warn")
	c.Set("logging.format", "json")

	var buf bytes.Buffer
	logger := c.CreateLogger(&buf)

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"service":"netanalyzer"`)
}

func TestCreateLoggerInvalidLevel(t *testing.T) {
	c := NewConfig()
	c.Set("logging.level", "loud")

	logger := c.CreateLogger(&bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
