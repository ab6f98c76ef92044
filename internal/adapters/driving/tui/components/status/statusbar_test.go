package status

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docwatch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docwatch/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateStarting, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_SetSync(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	bar.SetSync(domain.SyncState{
		LastVersion:    "0123456789abcdef",
		HasVersion:     true,
		IsPolling:      true,
		ActiveInterval: 5 * time.Second,
		State:          domain.StatePolling,
	})

	assert.Equal(t, StatePolling, bar.State())
	view := bar.View()
	assert.Contains(t, view, "polling every 5s")
	assert.Contains(t, view, "@ 0123456")
}

func TestStatusBar_SetSyncKeepsError(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateError)
	bar.SetMessage("fetch failed (404): Not Found")

	bar.SetSync(domain.SyncState{State: domain.StatePolling, IsPolling: true})

	assert.Equal(t, StateError, bar.State(), "an error stays until the next good cycle")
	assert.Contains(t, bar.View(), "Not Found")
}

func TestStatusBar_Disposed(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetSync(domain.SyncState{State: domain.StateDisposed})
	assert.Equal(t, StateStopped, bar.State())
}

func TestStatusBar_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "r: re-sync")

	bar.SetPrompt(true)
	view := bar.View()
	assert.Contains(t, view, "enter: save")
	assert.NotContains(t, view, "r: re-sync")
}

func TestStatusBar_States(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStarting, "starting..."},
		{StateSyncing, "syncing..."},
		{StateStopped, "stopped"},
		{StateError, "error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			assert.Contains(t, bar.View(), tt.want)
		})
	}
}
