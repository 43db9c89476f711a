package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

var processCmd = &cobra.Command{
	Use:   "process [slip-ref] [template-ref]",
	Short: "Populate a proposal deck from a placement slip",
	Long: `Extracts placement data from the slip workbook, detects the matching
slides in the deck template and rewrites their values in place. The
populated deck is stored through the configured transport.

Refs are local paths (or file:// URIs) on the local transport, Drive
file IDs on the drive transport.`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if processor == nil {
		return errors.New("processor not configured")
	}

	slipRef, templateRef := args[0], args[1]
	cmd.Printf("Processing %s against %s...\n", slipRef, templateRef)

	result, err := processor.ProcessRefs(ctx, slipRef, templateRef)
	if err != nil {
		if errors.Is(err, domain.ErrNoPlacementData) {
			return fmt.Errorf("the slip contains no mappable placement data")
		}
		return fmt.Errorf("process failed: %w", err)
	}

	printResult(cmd, result)
	return nil
}

// printResult renders the run audit: updates first, then anything a
// reviewer should look at.
func printResult(cmd *cobra.Command, result *domain.UpdateResult) {
	cmd.Printf("\nDeck: %d slides, %d fields updated\n", result.TotalSlides, len(result.Updated))

	for _, u := range result.Updated {
		cmd.Printf("  slide %2d  %-22s %s\n", u.Slide, u.Field, truncate(u.Value, 48))
	}

	if len(result.Errors) > 0 {
		cmd.Printf("\n%d field(s) need attention:\n", len(result.Errors))
		for _, e := range result.Errors {
			if e.Slide > 0 {
				cmd.Printf("  slide %2d  %-22s %s\n", e.Slide, e.Field, e.Error)
			} else {
				cmd.Printf("            %-22s %s\n", e.Field, e.Error)
			}
			if e.Hint != "" {
				cmd.Printf("            %-22s hint: %s\n", "", e.Hint)
			}
		}
	}

	for _, w := range result.Detection.Warnings {
		cmd.Printf("Warning: %s\n", w)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
