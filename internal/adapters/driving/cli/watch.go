package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/connectors/filesystem"
	"github.com/custodia-labs/slipdeck/internal/core/services"
	"github.com/custodia-labs/slipdeck/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [inbox-dir] [template-path]",
	Short: "Process placement slips as they arrive",
	Long: `Watches a local inbox directory and processes every new .xlsx workbook
against the given deck template. Populated decks land in a processed/
directory next to the inbox. Runs until interrupted.

Watching is a local workflow: both the inbox and the template are
filesystem paths regardless of the configured transport.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	inbox, templatePath := args[0], args[1]

	// The watcher pipeline always moves bytes locally.
	localStore := filesystem.NewFileStore(filepath.Join(inbox, "processed"))
	proc := services.NewProcessService(signatureStore, extractor, localStore, jobStore)

	watcher := filesystem.NewWatcher(inbox)
	defer watcher.Close() //nolint:errcheck // Best-effort on exit

	slips, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", inbox, err)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", inbox)

	for slip := range slips {
		cmd.Printf("\nNew slip: %s\n", slip)
		result, err := proc.ProcessRefs(ctx, slip, templatePath)
		if err != nil {
			logger.Warn("process %s: %v", slip, err)
			cmd.Printf("Failed: %v\n", err)
			continue
		}
		printResult(cmd, result)
	}

	return nil
}
