package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the GitHub credentials, the watched repository and the
polling interval.

A running "docwatch watch" picks changes up within a moment.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsUsernameCmd = &cobra.Command{
	Use:   "username <name>",
	Short: "Set the GitHub username",
	Long:  `Set the GitHub username. The watched repository lives under this account.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUsername,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token [token]",
	Short: "Set the GitHub access token",
	Long: `Set the GitHub personal access token.

Without an argument the token is read from stdin, without echo when stdin is a
terminal. Pass an empty string to clear it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsToken,
}

var settingsRepoCmd = &cobra.Command{
	Use:   "repo <name>",
	Short: "Set the watched repository",
	Long:  `Set the repository name under your account. An empty name restores the default.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsRepo,
}

var settingsIntervalCmd = &cobra.Command{
	Use:   "interval <ms|duration>",
	Short: "Set the polling interval",
	Long: `Set how often the document is polled, as milliseconds ("2500") or a
duration ("30s"). The minimum is 100 ms.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsInterval,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsUsernameCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	settingsCmd.AddCommand(settingsRepoCmd)
	settingsCmd.AddCommand(settingsIntervalCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	status, err := settingsService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	username := status.Username
	if username == "" {
		username = "(not set)"
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Println("[GitHub]")
	cmd.Printf("  Username: %s\n", username)
	cmd.Printf("  Token: %s\n", status.TokenMasked)
	cmd.Printf("  Repository: %s\n", status.Repo)
	cmd.Printf("  Path: %s\n", status.Path)
	cmd.Printf("  Branch: %s\n", status.Branch)
	cmd.Println()
	cmd.Println("[Polling]")
	cmd.Printf("  Interval: %s (%d ms)\n", status.Interval(), status.IntervalMS)
	return nil
}

func runSettingsUsername(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	username := strings.TrimSpace(args[0])
	if err := settingsService.Update(cmd.Context(), domain.SettingsUpdate{Username: &username}); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}

	cmd.Printf("Username set to %s\n", username)
	return nil
}

func runSettingsToken(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		cmd.Print("Token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	token = strings.TrimSpace(token)

	if err := settingsService.Update(cmd.Context(), domain.SettingsUpdate{Token: &token}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if token == "" {
		cmd.Println("Token cleared")
		return nil
	}
	cmd.Printf("Token set to %s\n", domain.MaskToken(token))
	return nil
}

func runSettingsRepo(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	repo := strings.TrimSpace(args[0])
	if err := settingsService.Update(cmd.Context(), domain.SettingsUpdate{Repo: &repo}); err != nil {
		return fmt.Errorf("failed to save repository: %w", err)
	}

	if repo == "" {
		repo = domain.DefaultRepo
	}
	cmd.Printf("Repository set to %s\n", repo)
	return nil
}

func runSettingsInterval(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	interval, err := domain.ParsePollInterval(args[0])
	if err != nil {
		return err
	}
	if err := settingsService.SetPollInterval(cmd.Context(), interval); err != nil {
		return fmt.Errorf("failed to save interval: %w", err)
	}

	cmd.Printf("Polling interval set to %s\n", interval)
	return nil
}

// readSecret reads one line, without echo when r is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(r io.Reader) string {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(r)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
