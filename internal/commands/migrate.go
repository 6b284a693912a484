package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/config"
	infrabq "github.com/neurofin/loan-processor/internal/infra/bigquery"
	"github.com/neurofin/loan-processor/internal/logger"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the BigQuery dataset and assessment tables if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cfg.StorageEnabled() {
				return fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
			}
			ctx := cmd.Context()

			repo, err := infrabq.NewAssessmentRepository(ctx, cfg.ProjectID, cfg.Dataset)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.EnsureTables(ctx); err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			log.Info().Str("project", cfg.ProjectID).Str("dataset", cfg.Dataset).Msg("tables ready")
			return nil
		},
	}
	return cmd
}
