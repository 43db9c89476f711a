package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/connectors/google"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change slipdeck settings.

Keys use dot notation, e.g.:
  transport.mode                    local or drive
  local.output_dir                  where populated decks land locally
  drive.folder                      Drive folder for uploaded decks
  campaign.send_interval_seconds    pause between campaign sends`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// secretKeys are masked when shown.
var secretKeys = map[string]bool{
	google.KeyClientSecret: true,
	google.KeyRefreshToken: true,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())

	keys := []string{
		"transport.mode",
		"local.output_dir",
		"drive.folder",
		"campaign.send_interval_seconds",
		google.KeyClientID,
		google.KeyClientSecret,
		google.KeyRefreshToken,
	}
	for _, key := range keys {
		value, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %-34s (not set)\n", key)
			continue
		}
		display := fmt.Sprintf("%v", value)
		if secretKeys[key] {
			display = maskSecret(display)
		}
		cmd.Printf("  %-34s %s\n", key, display)
	}

	if signatureStore != nil {
		if s, ok := signatureStore.(interface{ Path() string }); ok {
			cmd.Printf("\nSignature table: %s\n", s.Path())
		}
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	display := value
	if secretKeys[key] {
		display = maskSecret(value)
	}
	cmd.Printf("Set %s = %s\n", strings.TrimSpace(key), display)
	return nil
}
