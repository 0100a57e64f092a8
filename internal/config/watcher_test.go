package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWatcher_ReportsChanges checks that a rewritten file is reported once.
func TestWatcher_ReportsChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	initial := Default()
	require.NoError(t, Save(path, initial))

	changes := make(chan *Config, 8)

	w, err := NewWatcher(context.Background(), path, initial, func(cfg *Config) {
		changes <- cfg
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = w.Close() })

	updated := Default()
	updated.MinutesPlayer1 = 3
	require.NoError(t, Save(path, updated))

	select {
	case cfg := <-changes:
		require.Equal(t, 3, cfg.MinutesPlayer1)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change was not reported")
	}
}

// TestWatcher_IgnoresInvalidAndOtherFiles checks that broken or unrelated writes are skipped.
func TestWatcher_IgnoresInvalidAndOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	initial := Default()
	require.NoError(t, Save(path, initial))

	changes := make(chan *Config, 8)

	w, err := NewWatcher(context.Background(), path, initial, func(cfg *Config) {
		changes <- cfg
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), DefaultFilePermissions))
	require.NoError(t, os.WriteFile(path, []byte("minutes_player1: 0\n"), DefaultFilePermissions))
	// Rewriting the initial settings is not a change.
	require.NoError(t, Save(path, initial))

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected change reported: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}
