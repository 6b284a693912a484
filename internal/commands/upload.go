package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/gcsuploader"
	"github.com/neurofin/loan-processor/internal/logger"
)

func newUploadCommand() *cobra.Command {
	var bucket, file, object string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a statement to Cloud Storage and print its gs:// URI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			if object == "" {
				object = gcsuploader.StatementObjectName(file, time.Now())
			}

			log.Info().
				Str("bucket", bucket).
				Str("object", object).
				Str("file", file).
				Msg("Uploading file to GCS")

			uri, err := gcsuploader.UploadFile(ctx, bucket, object, file)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "GCS bucket name (required)")
	_ = cmd.MarkFlagRequired("bucket")
	cmd.Flags().StringVar(&file, "file", "", "local statement file (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().StringVar(&object, "object", "", "object name (default statements/YYYY/MM/DD/<file name>)")

	return cmd
}
