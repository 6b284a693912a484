package commands

import (
	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/logger"
)

func newRulesCommand(cfg *config.Config) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective compliance rules as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := config.LoadRules(cfg.RulesFile)
			if err != nil {
				return err
			}
			if _, err := rules.Thresholds(); err != nil {
				return err
			}

			if write != "" {
				if err := config.SaveRules(write, rules); err != nil {
					return err
				}
				log := logger.FromContext(cmd.Context())
				log.Info().Str("file", write).Msg("rules written")
				return nil
			}

			data, err := config.MarshalRules(rules)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&write, "write", "", "write the rules to this file instead of stdout")
	return cmd
}
