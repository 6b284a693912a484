package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/neurofin/loan-processor/internal/app"
	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/jobs"
	"github.com/neurofin/loan-processor/internal/jobs/inmemory"
	"github.com/neurofin/loan-processor/internal/logger"
)

func newBatchCommand(cfg *config.Config) *cobra.Command {
	var list string
	var workers int
	var store bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess every statement listed in a file, one path or gs:// URI per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := readSources(list)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := app.New(ctx, *cfg, app.Options{Store: store})
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := runBatch(ctx, a, sources, workers)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"Source", "Status", "Recommendation", "Score", "Run"})
			for _, j := range results {
				score := "-"
				if j.RiskScore != nil {
					score = fmt.Sprint(*j.RiskScore)
				}
				table.Append([]string{j.Source, string(j.Status), j.Recommendation, score, j.RunID})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&list, "list", "", "file listing one source per line (required)")
	_ = cmd.MarkFlagRequired("list")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent assessments")
	cmd.Flags().BoolVar(&store, "store", false, "persist each run to BigQuery (needs GOOGLE_CLOUD_PROJECT)")

	return cmd
}

// readSources returns the non-blank, non-comment lines of path.
func readSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source list: %w", err)
	}
	defer f.Close()

	var sources []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading source list: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources in %s", path)
	}
	return sources, nil
}

// runBatch pushes every source through the in-memory queue and waits until
// each job reaches a final status. Results keep the input order.
func runBatch(ctx context.Context, a *app.App, sources []string, workers int) ([]*jobs.AssessDocumentJob, error) {
	log := logger.FromContext(ctx)

	store := inmemory.NewStore()
	queue := inmemory.NewQueue(inmemory.Options{BufferSize: len(sources), Workers: workers}, store)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := queue.Start(workerCtx, app.JobHandler(a.Service)); err != nil {
		return nil, err
	}
	defer queue.Close()

	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		job := &jobs.AssessDocumentJob{Source: src}
		if err := queue.PublishAssessDocument(ctx, job); err != nil {
			return nil, fmt.Errorf("enqueueing %s: %w", src, err)
		}
		ids = append(ids, job.JobID)
	}
	log.Info().Int("jobs", len(ids)).Int("workers", workers).Msg("batch started")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		results := make([]*jobs.AssessDocumentJob, 0, len(ids))
		for _, id := range ids {
			j, err := store.GetJob(ctx, id)
			if err != nil {
				return nil, err
			}
			if j.Status != jobs.JobStatusCompleted && j.Status != jobs.JobStatusFailed {
				break
			}
			results = append(results, j)
		}
		if len(results) == len(ids) {
			return results, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
