package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/network-analysis-service/pkg/service"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	var (
		compact   bool
		algorithm string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.csv>",
		Short: "Analyze an edge list and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analysisOptions(c.cfg)
			if algorithm != "" {
				opts.CommunityAlgorithm = algorithm
			}
			opts.OnFallback = func(stage string, err error) {
				log.Debug().Str("stage", stage).Err(err).Msg("Fallback applied")
			}

			svc := service.NewAnalysisService(c.cfg.UploadDir(), c.cfg.SampleDir(), 1, opts, nil)
			report, err := svc.AnalyzeFile(cmd.Context(), service.SourceFile, args[0])
			if err != nil {
				return err
			}

			var out []byte
			if compact {
				out, err = json.Marshal(report)
			} else {
				out, err = json.MarshalIndent(report, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "print the report on a single line")
	cmd.Flags().StringVar(&algorithm, "communities", "", "community algorithm override (greedy, louvain)")
	return cmd
}
