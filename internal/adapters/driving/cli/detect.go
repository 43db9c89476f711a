package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

var detectCmd = &cobra.Command{
	Use:   "detect [template-ref]",
	Short: "Classify a deck's slides without modifying it",
	Long: `Runs slide signature detection against the deck template and prints
which slide was chosen for each logical type, with confidence scores.
Useful for checking a reordered or redesigned template before a real
processing run.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if processor == nil {
		return errors.New("processor not configured")
	}

	template, err := fileStore.Fetch(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch template: %w", err)
	}

	report, err := processor.Detect(ctx, template)
	if err != nil {
		return fmt.Errorf("detect failed: %w", err)
	}

	types := make([]string, 0, len(report.Results))
	for t := range report.Results {
		types = append(types, string(t))
	}
	sort.Strings(types)

	cmd.Println("Slide detection")
	cmd.Println("===============")
	for _, t := range types {
		res := report.Results[domain.SlideType(t)]
		marker := ""
		if res.UsedFallback {
			marker = "  (fallback)"
		}
		cmd.Printf("  %-16s slide %2d  confidence %.2f%s\n", t, res.Slide, res.Confidence, marker)
	}

	for _, w := range report.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
	return nil
}
