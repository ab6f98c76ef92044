package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the remote state API",
	Long: `Start the HTTP JSON API that other docwatch instances use with --api.

Endpoints:
  GET  /api/status             settings with the token masked
  POST /api/github/set         set username, token or repo
  GET  /api/interval           polling interval
  POST /api/interval           change the polling interval
  GET  /api/github/readme      current document and version
  POST /api/github/update      commit new content
  GET  /api/github/rate_limit  API quota`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serveAddr is a flag for the serve command.
var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", httpapi.DefaultAddr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := requireDocuments(); err != nil {
		return err
	}
	if options.APIAddr != "" {
		return errors.New("serve cannot run against another API; drop --api")
	}

	server := httpapi.NewServer(serveAddr, settingsService, documentService)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop() //nolint:errcheck

	cmd.Printf("Serving on http://%s\n", server.Addr())

	select {
	case <-cmd.Context().Done():
		return nil
	case err := <-server.Err():
		return fmt.Errorf("server stopped: %w", err)
	}
}
