package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

func TestSettingsService_Get(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		fmt.Fprint(w, `{"username":"octo","token_masked":"ghp_********abcd","repo":"docs","path":"README.md","branch":"main","interval_ms":2500}`)
	})
	svc := NewSettingsService(client)

	settings, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "octo", settings.Credentials.Username)
	assert.Empty(t, settings.Credentials.Token)
	assert.Equal(t, "docs", settings.Repo)
	assert.Equal(t, 2500*time.Millisecond, settings.PollInterval)
}

func TestSettingsService_Update(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/github/set", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &raw))
		fmt.Fprint(w, `{"ok":true}`)
	})
	svc := NewSettingsService(client)

	repo := "other"
	empty := ""
	err := svc.Update(context.Background(), domain.SettingsUpdate{Repo: &repo, Token: &empty})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"repo": "other", "token": ""}, raw)
}

func TestSettingsService_UpdateEmptySendsNothing(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	require.NoError(t, NewSettingsService(client).Update(context.Background(), domain.SettingsUpdate{}))
	assert.False(t, called)
}

func TestSettingsService_SetPollInterval(t *testing.T) {
	var body intervalRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"ok":true,"interval_ms":1000}`)
	})
	svc := NewSettingsService(client)

	require.NoError(t, svc.SetPollInterval(context.Background(), time.Second))
	assert.Equal(t, int64(1000), body.IntervalMS)
}

func TestSettingsService_SetPollIntervalBelowFloor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for an invalid interval")
	})

	err := NewSettingsService(client).SetPollInterval(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
