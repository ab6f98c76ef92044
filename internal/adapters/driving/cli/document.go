package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print the current document",
	Long:  `Reads the watched document once and prints its content.`,
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

var updateCmd = &cobra.Command{
	Use:   "update [content]",
	Short: "Commit new content for the document",
	Long: `Replaces the watched document with new content and commits it.

The content comes from the argument, from --file, or from stdin when the
argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the GitHub API rate limit",
	Args:  cobra.NoArgs,
	RunE:  runRate,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent reconciliation cycles",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

// fetchVersion is a flag for the fetch command.
var fetchVersion bool

// updateFile is a flag for the update command.
var updateFile string

// historyLimit is a flag for the history command.
var historyLimit int

func init() {
	fetchCmd.Flags().BoolVar(&fetchVersion, "version-only", false, "Print only the version marker")
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "Read the new content from a file")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of cycles to show")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(historyCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	snap, err := documentService.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	// Content goes to stdout so it can be piped; cmd.Print writes to stderr.
	out := cmd.OutOrStdout()
	if fetchVersion {
		fmt.Fprintln(out, snap.Version)
		return nil
	}
	fmt.Fprint(out, snap.Content)
	if !strings.HasSuffix(snap.Content, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	content, err := updateContent(cmd, args)
	if err != nil {
		return err
	}

	snap, err := documentService.Update(cmd.Context(), content)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	cmd.Printf("Document updated (%s)\n", snap.Version.Short())
	return nil
}

func updateContent(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case updateFile != "" && len(args) > 0:
		return "", errors.New("pass either content or --file, not both")
	case updateFile != "":
		data, err := os.ReadFile(updateFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", updateFile, err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("no content given: pass it as an argument, with --file, or '-' for stdin")
	}
}

func runRate(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}

	info, err := documentService.RateLimit(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get rate limit: %w", err)
	}

	cmd.Printf("Remaining: %d / %d\n", info.Remaining, info.Limit)
	cmd.Printf("Resets at: %s\n", info.ResetString())
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No cycles recorded yet.")
		return nil
	}

	for _, r := range records {
		line := fmt.Sprintf("%s  %-9s  %6s",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.Duration().Round(time.Millisecond))
		if r.Version != "" {
			line += "  " + r.Version.Short()
		}
		if r.Error != "" {
			line += "  " + r.Error
		}
		cmd.Println(line)
	}
	return nil
}
