package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/xlsx"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage email campaigns",
	Long: `Create and run paced email campaigns against recipient lists.

Recipients are loaded from a spreadsheet, deduplicated by address, and
sent to one at a time with a fixed pause between sends. Delivery state
is persisted per recipient, so an interrupted campaign resumes where it
stopped without re-sending.`,
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create [list-ref]",
	Short: "Create a campaign from a recipient list",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignCreate,
}

var campaignSendCmd = &cobra.Command{
	Use:   "send [campaign-id]",
	Short: "Send to all pending recipients",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignSend,
}

var campaignStatusCmd = &cobra.Command{
	Use:   "status [campaign-id]",
	Short: "Show delivery progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignStatus,
}

var (
	campaignName     string
	campaignSubject  string
	campaignBody     string
	campaignBodyFile string
	campaignAnnotate string
)

func init() {
	campaignCreateCmd.Flags().StringVar(&campaignName, "name", "", "campaign name (required)")
	campaignCreateCmd.Flags().StringVar(&campaignSubject, "subject", "", "message subject template (required)")
	campaignCreateCmd.Flags().StringVar(&campaignBody, "body", "", "message body template")
	campaignCreateCmd.Flags().StringVar(&campaignBodyFile, "body-file", "", "read the body template from a file")
	campaignStatusCmd.Flags().StringVar(&campaignAnnotate, "annotate", "",
		"write per-recipient statuses back into the given list file")

	campaignCmd.AddCommand(campaignCreateCmd)
	campaignCmd.AddCommand(campaignSendCmd)
	campaignCmd.AddCommand(campaignStatusCmd)
	rootCmd.AddCommand(campaignCmd)
}

func runCampaignCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runner, err := campaignRunner(ctx, false)
	if err != nil {
		return err
	}

	body := campaignBody
	if campaignBodyFile != "" {
		content, err := os.ReadFile(campaignBodyFile)
		if err != nil {
			return fmt.Errorf("read body file: %w", err)
		}
		body = string(content)
	}

	c, err := runner.Create(ctx, campaignName, campaignSubject, body, args[0])
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	cmd.Printf("Created campaign %s (%s)\n", c.Name, c.ID)
	cmd.Printf("Run 'slipdeck campaign send %s' to start sending.\n", c.ID)
	return nil
}

func runCampaignSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runner, err := campaignRunner(ctx, true)
	if err != nil {
		return err
	}

	cmd.Printf("Sending campaign %s...\n", args[0])

	progress, err := runner.Run(ctx, args[0])
	if errors.Is(err, domain.ErrCampaignComplete) {
		cmd.Println("Nothing to send - campaign is already complete.")
		printProgress(cmd, progress)
		return nil
	}
	if err != nil {
		return fmt.Errorf("campaign send: %w", err)
	}

	printProgress(cmd, progress)
	return nil
}

func runCampaignStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runner, err := campaignRunner(ctx, false)
	if err != nil {
		return err
	}

	progress, err := runner.Status(ctx, args[0])
	if err != nil {
		return fmt.Errorf("campaign status: %w", err)
	}
	printProgress(cmd, progress)

	if campaignAnnotate != "" {
		if err := annotateList(cmd, args[0], campaignAnnotate); err != nil {
			return err
		}
	}
	return nil
}

// annotateList writes each recipient's delivery status into a status
// column of the list workbook, keyed by original row.
func annotateList(cmd *cobra.Command, campaignID, listPath string) error {
	ctx := cmd.Context()
	if campaignStore == nil {
		return errors.New("campaign store not configured")
	}

	recipients, err := campaignStore.ListRecipients(ctx, campaignID, "")
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	statuses := make(map[int]string, len(recipients))
	for _, r := range recipients {
		if r.Row > 0 {
			statuses[r.Row] = string(r.Status)
		}
	}

	list, err := os.ReadFile(listPath)
	if err != nil {
		return fmt.Errorf("read list: %w", err)
	}
	annotated, err := xlsx.NewRecipientList().AnnotateStatuses(list, statuses)
	if err != nil {
		return fmt.Errorf("annotate list: %w", err)
	}
	if err := os.WriteFile(listPath, annotated, 0600); err != nil {
		return fmt.Errorf("write list: %w", err)
	}

	cmd.Printf("Wrote %d statuses into %s\n", len(statuses), listPath)
	return nil
}

func printProgress(cmd *cobra.Command, p domain.CampaignProgress) {
	cmd.Printf("Recipients: %d total, %d sent, %d pending, %d failed, %d skipped\n",
		p.Total, p.Sent, p.Pending, p.Failed, p.Skipped)
}
