// Package config holds the service configuration backed by Viper.
package config

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// NETANALYZER_SERVER_ADDRESS.
const EnvPrefix = "NETANALYZER"

// Config manages service configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults and environment
// overrides enabled.
func NewConfig() *Config {
	v := viper.New()

	// Server parameters
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Storage parameters
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.sample_dir", "samples")
	v.SetDefault("storage.max_upload_bytes", int64(32<<20))

	// Job parameters
	v.SetDefault("jobs.max_workers", runtime.NumCPU())

	// Analysis parameters
	v.SetDefault("analysis.parallel", true)
	v.SetDefault("analysis.top_n", 5)
	v.SetDefault("analysis.prediction_node_limit", 1000)
	v.SetDefault("analysis.eigenvector_max_iter", 1000)
	v.SetDefault("analysis.eigenvector_tolerance", 1e-6)
	v.SetDefault("analysis.community_algorithm", "greedy")

	// Auth parameters
	v.SetDefault("auth.secret", "change-me")
	v.SetDefault("auth.session_ttl", 30*time.Minute)
	v.SetDefault("auth.reset_token_ttl", time.Hour)
	v.SetDefault("auth.require_for_analysis", false)
	v.SetDefault("auth.store", "memory")
	v.SetDefault("auth.badger_path", "data/users")
	v.SetDefault("auth.seed_demo_user", true)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for server parameters
func (c *Config) ServerAddress() string       { return c.v.GetString("server.address") }
func (c *Config) ReadTimeout() time.Duration  { return c.v.GetDuration("server.read_timeout") }
func (c *Config) WriteTimeout() time.Duration { return c.v.GetDuration("server.write_timeout") }
func (c *Config) AllowedOrigins() []string    { return c.v.GetStringSlice("server.allowed_origins") }
func (c *Config) UploadDir() string           { return c.v.GetString("storage.upload_dir") }
func (c *Config) SampleDir() string           { return c.v.GetString("storage.sample_dir") }
func (c *Config) MaxUploadBytes() int64       { return c.v.GetInt64("storage.max_upload_bytes") }
func (c *Config) MaxWorkers() int             { return c.v.GetInt("jobs.max_workers") }
func (c *Config) Parallel() bool              { return c.v.GetBool("analysis.parallel") }
func (c *Config) TopN() int                   { return c.v.GetInt("analysis.top_n") }
func (c *Config) PredictionNodeLimit() int    { return c.v.GetInt("analysis.prediction_node_limit") }
func (c *Config) EigenvectorMaxIter() int     { return c.v.GetInt("analysis.eigenvector_max_iter") }
func (c *Config) EigenvectorTolerance() float64 {
	return c.v.GetFloat64("analysis.eigenvector_tolerance")
}
func (c *Config) CommunityAlgorithm() string   { return c.v.GetString("analysis.community_algorithm") }
func (c *Config) AuthSecret() string           { return c.v.GetString("auth.secret") }
func (c *Config) SessionTTL() time.Duration    { return c.v.GetDuration("auth.session_ttl") }
func (c *Config) ResetTokenTTL() time.Duration { return c.v.GetDuration("auth.reset_token_ttl") }
func (c *Config) RequireAuthForAnalysis() bool { return c.v.GetBool("auth.require_for_analysis") }
func (c *Config) UserStore() string            { return c.v.GetString("auth.store") }
func (c *Config) BadgerPath() string           { return c.v.GetString("auth.badger_path") }
func (c *Config) SeedDemoUser() bool           { return c.v.GetBool("auth.seed_demo_user") }
func (c *Config) LogLevel() string             { return c.v.GetString("logging.level") }
func (c *Config) LogFormat() string            { return c.v.GetString("logging.format") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config. The "json" format
// writes structured lines to out; anything else uses the console writer.
func (c *Config) CreateLogger(out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	if c.LogFormat() != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "netanalyzer").Logger()
}
