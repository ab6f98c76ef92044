package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService edits the settings held by the server.
type SettingsService struct {
	client *Client
}

// NewSettingsService wraps client.
func NewSettingsService(client *Client) *SettingsService {
	return &SettingsService{client: client}
}

// Get returns the server's settings. The token never leaves the server, so
// Credentials.Token is always empty.
func (s *SettingsService) Get(ctx context.Context) (*domain.AppSettings, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.AppSettings{
		Credentials:  domain.Credentials{Username: status.Username},
		Repo:         status.Repo,
		Path:         status.Path,
		Branch:       status.Branch,
		PollInterval: status.Interval(),
	}, nil
}

// Status returns GET /api/status.
func (s *SettingsService) Status(ctx context.Context) (*domain.SettingsStatus, error) {
	var status domain.SettingsStatus
	if err := s.client.do(ctx, http.MethodGet, "/api/status", nil, &status, requestTimeout); err != nil {
		return nil, err
	}
	return &status, nil
}

type setRequest struct {
	Username *string `json:"username,omitempty"`
	Token    *string `json:"token,omitempty"`
	Repo     *string `json:"repo,omitempty"`
}

// Update posts the present fields to /api/github/set.
func (s *SettingsService) Update(ctx context.Context, update domain.SettingsUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	body := setRequest{Username: update.Username, Token: update.Token, Repo: update.Repo}
	return s.client.do(ctx, http.MethodPost, "/api/github/set", body, nil, requestTimeout)
}

type intervalRequest struct {
	IntervalMS int64 `json:"interval_ms"`
}

// SetPollInterval posts to /api/interval. The floor is checked locally first.
func (s *SettingsService) SetPollInterval(ctx context.Context, interval time.Duration) error {
	if err := domain.ValidatePollInterval(interval); err != nil {
		return err
	}
	body := intervalRequest{IntervalMS: interval.Milliseconds()}
	return s.client.do(ctx, http.MethodPost, "/api/interval", body, nil, requestTimeout)
}
