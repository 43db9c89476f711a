package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent processing runs",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 10, "maximum runs to show (0 for all)")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if jobStore == nil {
		return errors.New("job store not configured")
	}

	jobs, err := jobStore.ListJobs(ctx, jobsLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("No processing runs recorded yet.")
		return nil
	}

	for _, job := range jobs {
		cmd.Printf("%s  %s\n", job.CreatedAt.Local().Format("2006-01-02 15:04"), job.ID)
		cmd.Printf("  slip:     %s\n", job.SourceURI)
		cmd.Printf("  template: %s\n", job.TemplateURI)
		cmd.Printf("  output:   %s\n", job.OutputURI)
		cmd.Printf("  %d slides, %d updated, %d errors\n\n",
			job.TotalSlides, job.UpdatedCount, job.ErrorCount)
	}
	return nil
}
