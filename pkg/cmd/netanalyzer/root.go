package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/network-analysis-service/pkg/config"
	"github.com/gilchrisn/network-analysis-service/pkg/network"
)

// cli carries the state shared by all subcommands.
type cli struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: config.NewConfig()}

	root := &cobra.Command{
		Use:           "netanalyzer",
		Short:         "Analyze CSV edge lists as undirected networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initialize()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newServeCmd(c))
	root.AddCommand(newAnalyzeCmd(c))

	return root
}

// initialize loads the config file and installs the global logger.
func (c *cli) initialize() error {
	if c.cfgFile != "" {
		if err := c.cfg.LoadFromFile(c.cfgFile); err != nil {
			return fmt.Errorf("failed to load config %s: %w", c.cfgFile, err)
		}
	}
	if c.logLevel != "" {
		c.cfg.Set("logging.level", c.logLevel)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = c.cfg.CreateLogger(os.Stderr)

	log.Debug().
		Str("config_file", c.cfgFile).
		Str("log_level", c.cfg.LogLevel()).
		Msg("Configuration loaded")

	return nil
}

// analysisOptions maps configuration onto engine options.
func analysisOptions(cfg *config.Config) network.Options {
	opts := network.DefaultOptions()
	opts.TopN = cfg.TopN()
	opts.PredictionNodeLimit = cfg.PredictionNodeLimit()
	opts.EigenvectorMaxIter = cfg.EigenvectorMaxIter()
	opts.EigenvectorTolerance = cfg.EigenvectorTolerance()
	opts.Parallel = cfg.Parallel()
	opts.CommunityAlgorithm = cfg.CommunityAlgorithm()
	opts.Logger = log.Logger
	return opts
}
