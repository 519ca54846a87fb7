package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/network-analysis-service/pkg/config"
	"github.com/gilchrisn/network-analysis-service/pkg/network"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "triangle.csv", "source,target\nA,B\nB,C\nC,A\n")
	cfgPath := writeFile(t, dir, "config.yaml", "logging:\n  level: error\nanalysis:\n  top_n: 2\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"analyze", "--config", cfgPath, "--compact", csvPath})
	require.NoError(t, cmd.Execute())

	var report network.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 3, report.Metrics.Nodes)
	assert.Len(t, report.TopNodes, 2)
}

func TestAnalyzeCommandErrors(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "--log-level", "error", filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "x.csv"})
	assert.Error(t, cmd.Execute())
}

func TestBuildServer(t *testing.T) {
	dir := t.TempDir()
	sampleDir := filepath.Join(dir, "samples")
	require.NoError(t, os.MkdirAll(sampleDir, 0o755))
	writeFile(t, sampleDir, "pair.csv", "s,t\nA,B\n")

	cfg := config.NewConfig()
	cfg.Set("storage.sample_dir", sampleDir)
	cfg.Set("storage.upload_dir", filepath.Join(dir, "uploads"))
	cfg.Set("auth.store", "badger")
	cfg.Set("auth.badger_path", filepath.Join(dir, "users"))

	server, kv, err := buildServer(cfg)
	require.NoError(t, err)
	defer kv.Close()

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sample/pair.csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"test@example.com","password":"password123"}`)
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", body))
	assert.Equal(t, http.StatusOK, rec.Code, "demo user is seeded")
}

func TestOpenKVUnknownStore(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Set("auth.store", "redis")

	_, err := openKV(cfg)
	assert.Error(t, err)
}
