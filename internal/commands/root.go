// Package commands implements the loanproc command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Settings start from the environment; persistent flags override them.
func NewRootCommand() *cobra.Command {
	cfg := config.FromEnv()

	rootCmd := &cobra.Command{
		Use:   "loanproc",
		Short: "Assess bank statements for loan underwriting",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Out: cmd.ErrOrStderr()})
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx, log))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Provider, "provider", cfg.Provider, "document oracle: keyword or gemini")
	flags.StringVar(&cfg.Model, "model", cfg.Model, "Gemini model name")
	flags.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "compliance rules YAML file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newProcessCommand(&cfg),
		newBatchCommand(&cfg),
		newRulesCommand(&cfg),
		newUploadCommand(),
		newMigrateCommand(&cfg),
	)

	return rootCmd
}
