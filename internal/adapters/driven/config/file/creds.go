package file

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

// Credentials file keys and the config keys they seed.
var credentialKeys = map[string]string{
	"TOKEN":     "github.token",
	"USERNAME":  "github.username",
	"REPO_NAME": "github.repo",
}

// ParseCredentialsFile reads KEY=VALUE lines. Blank lines and lines starting
// with # are ignored; values may be wrapped in single or double quotes.
func ParseCredentialsFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// SeedCredentials copies TOKEN, USERNAME and REPO_NAME from path into store
// and saves it. A missing file is not an error. It returns the number of
// keys written.
func SeedCredentials(store driven.ConfigStore, path string) (int, error) {
	values, err := ParseCredentialsFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	written := 0
	for fileKey, configKey := range credentialKeys {
		v, ok := values[fileKey]
		if !ok || v == "" {
			continue
		}
		if err := store.Set(configKey, v); err != nil {
			return written, err
		}
		written++
	}
	if written == 0 {
		return 0, nil
	}
	return written, store.Save()
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
