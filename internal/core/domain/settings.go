package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Polling cadence bounds.
const (
	// DefaultPollInterval is used when no interval has been configured.
	DefaultPollInterval = 5 * time.Second

	// MinPollInterval is the floor applied to every armed timer.
	MinPollInterval = 100 * time.Millisecond

	// MaxPollIntervalMS is the largest millisecond count a time.Duration holds.
	MaxPollIntervalMS = int64(math.MaxInt64 / time.Millisecond)
)

const (
	tokenMask = "********"
	notSet    = "(not set)"
)

// ClampPollInterval raises an interval to MinPollInterval.
func ClampPollInterval(d time.Duration) time.Duration {
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}

// ValidatePollInterval rejects intervals below the floor.
func ValidatePollInterval(d time.Duration) error {
	if d < MinPollInterval {
		return fmt.Errorf("%w: interval must be >= %d ms", ErrInvalidInput, MinPollInterval.Milliseconds())
	}
	return nil
}

// ParsePollInterval accepts a bare number of milliseconds or a Go duration
// such as "30s", and rejects values below the floor.
func ParsePollInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: interval is empty", ErrInvalidInput)
	}

	var d time.Duration
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms > MaxPollIntervalMS {
			return 0, fmt.Errorf("%w: %d ms is out of range", ErrInvalidInput, ms)
		}
		d = time.Duration(ms) * time.Millisecond
	} else {
		parsed, perr := time.ParseDuration(raw)
		if perr != nil {
			return 0, fmt.Errorf("%w: %q is not a number of milliseconds or a duration", ErrInvalidInput, raw)
		}
		d = parsed
	}

	if err := ValidatePollInterval(d); err != nil {
		return 0, err
	}
	return d, nil
}

// Credentials authenticate against the remote API.
type Credentials struct {
	Username string
	Token    string
}

// IsComplete reports whether both username and token are set.
func (c Credentials) IsComplete() bool {
	return c.Username != "" && c.Token != ""
}

// MaskedToken returns the token with its middle hidden.
func (c Credentials) MaskedToken() string {
	return MaskToken(c.Token)
}

// MaskToken hides all but the first and last four characters of a token.
func MaskToken(token string) string {
	if token == "" {
		return notSet
	}
	if len(token) > 8 {
		return token[:4] + tokenMask + token[len(token)-4:]
	}
	return tokenMask
}

// AppSettings holds the user-editable configuration.
type AppSettings struct {
	Credentials Credentials

	// Repo is the repository name under the user's account.
	Repo   string
	Path   string
	Branch string

	// PollInterval is the reconciliation cadence.
	PollInterval time.Duration
}

// DefaultAppSettings returns the settings used before anything is configured.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Repo:         DefaultRepo,
		Path:         DefaultPath,
		Branch:       DefaultBranch,
		PollInterval: DefaultPollInterval,
	}
}

// Target resolves the file target from the settings.
func (s *AppSettings) Target() Target {
	t := Target{
		Owner:  s.Credentials.Username,
		Repo:   s.Repo,
		Path:   s.Path,
		Branch: s.Branch,
	}
	if t.Repo == "" {
		t.Repo = DefaultRepo
	}
	if t.Path == "" {
		t.Path = DefaultPath
	}
	if t.Branch == "" {
		t.Branch = DefaultBranch
	}
	return t
}

// Status returns a display-safe view of the settings.
func (s *AppSettings) Status() SettingsStatus {
	t := s.Target()
	return SettingsStatus{
		Username:    s.Credentials.Username,
		TokenMasked: s.Credentials.MaskedToken(),
		Repo:        t.Repo,
		Path:        t.Path,
		Branch:      t.Branch,
		IntervalMS:  s.PollInterval.Milliseconds(),
	}
}

// SettingsStatus is the masked settings view exposed by status endpoints.
type SettingsStatus struct {
	Username    string `json:"username"`
	TokenMasked string `json:"token_masked"`
	Repo        string `json:"repo"`
	Path        string `json:"path"`
	Branch      string `json:"branch"`
	IntervalMS  int64  `json:"interval_ms"`
}

// Interval returns the polling interval as a duration.
func (s SettingsStatus) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// RateLimitInfo reports the remote API quota.
type RateLimitInfo struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// ResetString formats the reset time the way status output shows it.
func (r RateLimitInfo) ResetString() string {
	if r.ResetAt.IsZero() {
		return "unknown"
	}
	return r.ResetAt.UTC().Format("2006-01-02 15:04:05 UTC")
}

// SettingsUpdate is a partial settings edit. Nil fields are left unchanged;
// an empty string clears the value.
type SettingsUpdate struct {
	Username *string
	Token    *string
	Repo     *string
}

// IsEmpty reports whether the update changes nothing.
func (u SettingsUpdate) IsEmpty() bool {
	return u.Username == nil && u.Token == nil && u.Repo == nil
}
