package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/slipdeck/internal/connectors/google"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google credentials",
	Long: `Configure and verify the Google credentials used for the drive
transport and campaign sending.

Slipdeck authenticates with an OAuth client ID, client secret and a
refresh token obtained for the Drive and Gmail scopes. The credentials
are kept in the config file; access tokens are refreshed automatically.`,
	RunE: runAuthVerify,
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Store Google credentials interactively",
	RunE:  runAuthSetup,
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the stored credentials work",
	RunE:  runAuthVerify,
}

func init() {
	authCmd.AddCommand(authSetupCmd)
	authCmd.AddCommand(authVerifyCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Google Credentials Setup")
	cmd.Println("========================")
	cmd.Println()

	cmd.Print("OAuth client ID: ")
	clientID := readLine(reader)
	if clientID == "" {
		return errors.New("client ID is required")
	}

	cmd.Print("OAuth client secret: ")
	clientSecret := readPassword()
	cmd.Println()
	if clientSecret == "" {
		return errors.New("client secret is required")
	}

	cmd.Print("Refresh token: ")
	refreshToken := readPassword()
	cmd.Println()
	if refreshToken == "" {
		return errors.New("refresh token is required")
	}

	if err := configStore.Set(google.KeyClientID, clientID); err != nil {
		return fmt.Errorf("save client ID: %w", err)
	}
	if err := configStore.Set(google.KeyClientSecret, clientSecret); err != nil {
		return fmt.Errorf("save client secret: %w", err)
	}
	if err := configStore.Set(google.KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}

	cmd.Printf("Credentials saved to %s\n", configStore.Path())
	cmd.Println("Run 'slipdeck auth verify' to test them.")
	return nil
}

func runAuthVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	ts, err := google.NewTokenSource(ctx, configStore)
	if err != nil {
		return err
	}

	cmd.Print("Refreshing access token... ")
	token, err := ts.Token()
	if err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("refresh token: %w", err)
	}
	cmd.Println("OK")

	info, err := google.GetUserInfo(ctx, token.AccessToken)
	if err != nil {
		return fmt.Errorf("fetch account info: %w", err)
	}

	cmd.Printf("Authenticated as %s\n", info.Email)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
