package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)

	serve, _, err := rootCmd.Find([]string{"mcp", "serve"})
	require.NoError(t, err)
	assert.Equal(t, mcpServeCmd, serve)

	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)
	assert.Contains(t, mcpServeCmd.Long, "docwatch://readme")
}

func TestMCPCmd_NoDocuments(t *testing.T) {
	setupServices(t)
	documentService = nil

	_, err := run("mcp", "serve")

	assert.EqualError(t, err, "document service not configured")
}
