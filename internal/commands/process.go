package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/app"
	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/logger"
)

func newProcessCommand(cfg *config.Config) *cobra.Command {
	var input, output string
	var store bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one statement through the pipeline and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			a, err := app.New(ctx, *cfg, app.Options{Store: store})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Service.Run(ctx, input)
			if err != nil {
				log.Error().Err(err).Msg("storing assessment")
			}
			if result == nil {
				return err
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			data = append(data, '\n')

			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				log.Info().Str("output", output).Msg("result written")
			} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}

			log.Info().
				Str("run_id", result.RunID).
				Bool("success", result.Success).
				Int("risk_score", result.RiskScore).
				Str("recommendation", string(result.Recommendation)).
				Float64("seconds", result.ProcessingTimeSeconds).
				Msg("assessment finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "statement path or gs:// URI (required)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&output, "output", "", "write the result JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&store, "store", false, "persist the run to BigQuery (needs GOOGLE_CLOUD_PROJECT)")

	return cmd
}
