package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianworks/meridian/pkg/observability"
)

func writeSettingsFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettingsFile(t, t.TempDir(), `
company: Meridian Logistics
owner_email: owner@example.com
pending_invite_days: 30
`)

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "Meridian Logistics", settings.Company)
	assert.Equal(t, "owner@example.com", settings.OwnerEmail)
	assert.Equal(t, 30, settings.PendingInviteDays)
	assert.Equal(t, 30*24*time.Hour, settings.PendingInviteTTL())
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSettings(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := writeSettingsFile(t, dir, "owner_email: not-an-email\n")
	_, err = LoadSettings(path)
	assert.Error(t, err)

	path = writeSettingsFile(t, dir, "company: X\n")
	_, err = LoadSettings(path)
	assert.Error(t, err, "missing owner email must fail")

	path = writeSettingsFile(t, dir, "owner_email: o@x.com\npending_invite_days: -1\n")
	_, err = LoadSettings(path)
	assert.Error(t, err)
}

func TestSettingsStore_AtomicSwap(t *testing.T) {
	first := &Settings{OwnerEmail: "a@example.com"}
	store := NewSettingsStore(first)

	assert.Same(t, first, store.Current())

	second := &Settings{OwnerEmail: "b@example.com"}
	store.Replace(second)
	assert.Same(t, second, store.Current())
}

func TestWatchSettings_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeSettingsFile(t, dir, "owner_email: first@example.com\n")

	initial, err := LoadSettings(path)
	require.NoError(t, err)
	store := NewSettingsStore(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	require.NoError(t, WatchSettings(ctx, path, store, logger))

	writeSettingsFile(t, dir, "owner_email: second@example.com\n")

	require.Eventually(t, func() bool {
		return store.Current().OwnerEmail == "second@example.com"
	}, 5*time.Second, 20*time.Millisecond)

	// A broken edit is skipped; the last good snapshot stays active.
	writeSettingsFile(t, dir, "owner_email: broken\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "second@example.com", store.Current().OwnerEmail)
}
