package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCreds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creds")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseCredentialsFile(t *testing.T) {
	path := writeCreds(t, `
# GitHub access
TOKEN="ghp_abc"
USERNAME = octo
REPO_NAME='handbook'
not a pair
`)

	values, err := ParseCredentialsFile(path)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"TOKEN":     "ghp_abc",
		"USERNAME":  "octo",
		"REPO_NAME": "handbook",
	}, values)
}

func TestSeedCredentials(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	path := writeCreds(t, "TOKEN=ghp_abc\nUSERNAME=octo\nREPO_NAME=\n")

	n, err := SeedCredentials(store, path)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ghp_abc", store.GetString("github.token"))
	assert.Equal(t, "octo", store.GetString("github.username"))
	assert.Equal(t, "", store.GetString("github.repo"))
	assert.FileExists(t, store.Path())
}

func TestSeedCredentials_MissingFile(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	n, err := SeedCredentials(store, filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoFileExists(t, store.Path())
}
