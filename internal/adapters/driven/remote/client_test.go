package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL)
	require.NoError(t, err)
	return client
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://127.0.0.1:8765"},
		{"localhost:9000", "http://localhost:9000"},
		{"https://docs.example.com/api?x=1", "https://docs.example.com"},
		{"  10.0.0.2:80  ", "http://10.0.0.2:80"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := parseBaseURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestClient_FetchDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/github/readme", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"version":"v1","content":"hello"}`)
	})

	snap, err := client.FetchDocument(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.VersionMarker("v1"), snap.Version)
	assert.Equal(t, "hello", snap.Content)
}

func TestClient_FetchDocument_ErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"username or token missing"}`)
	})

	_, err := client.FetchDocument(context.Background())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 400, fe.StatusCode)
	assert.Equal(t, "username or token missing", fe.Message)
}

func TestClient_FetchDocument_StatusOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	})

	_, err := client.FetchDocument(context.Background())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 502, fe.StatusCode)
	assert.Equal(t, "HTTP 502", fe.Message)
}

func TestClient_FetchDocument_MissingVersion(t *testing.T) {
	// a payload with the marker under another name must not look unchanged
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"v1","content":"hello"}`)
	})

	_, err := client.FetchDocument(context.Background())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, domain.ErrInvalidVersion)
}

func TestClient_FetchDocument_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":`)
	})

	_, err := client.FetchDocument(context.Background())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Message, "decode response")
}

func TestClient_FetchDocument_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := NewClient(addr)
	require.NoError(t, err)

	_, err = client.FetchDocument(context.Background())

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
}

func TestClient_WriteDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/github/update", r.URL.Path)

		var body updateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new text", body.Content)
		assert.Equal(t, "msg", body.Message)
		fmt.Fprint(w, `{"ok":true,"sha":"abc123","content":"new text"}`)
	})

	snap, err := client.WriteDocument(context.Background(), "new text", "msg")

	require.NoError(t, err)
	assert.Equal(t, domain.VersionMarker("abc123"), snap.Version)
	assert.Equal(t, "new text", snap.Content)
}

func TestClient_WriteDocument_NoConsistencyConfirmation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	})

	snap, err := client.WriteDocument(context.Background(), "text", "")

	require.NoError(t, err)
	assert.Equal(t, domain.BlobMarker("text"), snap.Version)
}

func TestClient_RateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"remaining":10,"limit":60,"resets_at":"2026-01-01T00:00:00Z"}`)
	})

	info, err := client.RateLimit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, info.Remaining)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), info.ResetAt.UTC())
}
