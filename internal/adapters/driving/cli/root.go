// Package cli implements the slipdeck command-line interface.
//
// Commands are thin: they parse arguments, call into the driving ports
// and format results. Service wiring happens once per invocation in
// ensureServices; tests replace the package-level services with fakes.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/slipdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/slipdeck/internal/connectors/filesystem"
	"github.com/custodia-labs/slipdeck/internal/connectors/google"
	googledrive "github.com/custodia-labs/slipdeck/internal/connectors/google/drive"
	googlegmail "github.com/custodia-labs/slipdeck/internal/connectors/google/gmail"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driving"
	"github.com/custodia-labs/slipdeck/internal/core/services"
	"github.com/custodia-labs/slipdeck/internal/logger"
	"github.com/custodia-labs/slipdeck/internal/xlsx"
)

// Transport modes for document bytes.
const (
	TransportLocal = "local"
	TransportDrive = "drive"
)

var version = "dev"

var (
	verbose       bool
	transportFlag string
)

// Wired services. ensureServices fills these on first use; tests
// substitute fakes directly.
var (
	configStore     driven.ConfigStore
	signatureStore  driven.SignatureStore
	metadataStore   *sqlite.Store
	fileStore       driven.FileStore
	extractor       driven.PlacementExtractor
	recipientSource driven.RecipientSource
	jobStore        driven.JobStore
	campaignStore   driven.CampaignStore
	processor       driving.DocumentProcessor
	campaigns       driving.CampaignRunner
)

var rootCmd = &cobra.Command{
	Use:   "slipdeck",
	Short: "Populate proposal decks from placement slips",
	Long: `Slipdeck reads insurance placement slips (Excel workbooks), detects the
matching slides in a PowerPoint proposal deck and rewrites their values
in place, preserving all formatting. It also runs paced, deduplicated
email campaigns against recipient lists.

Documents move over a configurable transport: local paths by default,
Google Drive file IDs when transport is set to drive.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVar(&transportFlag, "transport", "",
		"document transport: local or drive (default from config)")
}

// Execute runs the CLI. The version string is stamped by the build.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer func() {
		if metadataStore != nil {
			metadataStore.Close() //nolint:errcheck // Best-effort on exit
		}
	}()
	return rootCmd.Execute()
}

// ensureServices wires the full processing stack on first use.
func ensureServices(ctx context.Context) error {
	if processor != nil {
		return nil
	}

	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	signatureStore, err = file.NewSignatureStore("")
	if err != nil {
		return fmt.Errorf("open signature store: %w", err)
	}
	metadataStore, err = sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}

	extractor = xlsx.NewExtractor()
	recipientSource = xlsx.NewRecipientList()
	jobStore = metadataStore.JobStore()
	campaignStore = metadataStore.CampaignStore()

	fileStore, err = buildFileStore(ctx)
	if err != nil {
		return err
	}

	processor = services.NewProcessService(
		signatureStore, extractor, fileStore, jobStore)
	return nil
}

// transportMode resolves the active transport from flag then config.
func transportMode() string {
	if transportFlag != "" {
		return transportFlag
	}
	if mode := configStore.GetString("transport.mode"); mode != "" {
		return mode
	}
	return TransportLocal
}

// buildFileStore constructs the transport selected by flag or config.
func buildFileStore(ctx context.Context) (driven.FileStore, error) {
	switch mode := transportMode(); mode {
	case TransportDrive:
		ts, err := google.NewTokenSource(ctx, configStore)
		if err != nil {
			return nil, err
		}
		svc, err := google.NewDriveService(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("create drive service: %w", err)
		}
		logger.Debug("using drive transport")
		return googledrive.NewFileStore(svc, configStore.GetString("drive.folder")), nil

	case TransportLocal:
		dir := configStore.GetString("local.output_dir")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("get home directory: %w", err)
			}
			dir = filepath.Join(home, ".slipdeck", "output")
		}
		logger.Debug("using local transport, output in %s", dir)
		return filesystem.NewFileStore(dir), nil

	default:
		return nil, fmt.Errorf("unknown transport %q (want %s or %s)",
			mode, TransportLocal, TransportDrive)
	}
}

// buildMailer constructs the Gmail mailer. Campaign sending always goes
// through Gmail regardless of the document transport.
func buildMailer(ctx context.Context) (driven.Mailer, error) {
	ts, err := google.NewTokenSource(ctx, configStore)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewGmailService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return googlegmail.NewMailer(svc), nil
}

// campaignRunner returns the campaign service, wiring it on first use.
// The mailer is only built for commands that actually send.
func campaignRunner(ctx context.Context, needMailer bool) (driving.CampaignRunner, error) {
	if campaigns != nil {
		return campaigns, nil
	}
	if err := ensureServices(ctx); err != nil {
		return nil, err
	}

	var m driven.Mailer
	if needMailer {
		var err error
		if m, err = buildMailer(ctx); err != nil {
			return nil, err
		}
	}

	interval := time.Duration(configStore.GetInt("campaign.send_interval_seconds")) * time.Second
	return services.NewCampaignService(campaignStore, recipientSource, fileStore, m, interval), nil
}
