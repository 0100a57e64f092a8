package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext verifies the global fallback and context-scoped loggers.
func TestFromContext(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	named := WithName(context.Background(), "chessclock")
	require.NotSame(t, Logger(), FromContext(named))

	scoped := WithKV(named, "session_id", "abc")
	require.NotSame(t, FromContext(named), FromContext(scoped))
}

// TestNewFile ensures file loggers write to disk and close cleanly.
func TestNewFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chessclock.log")

	l, closeFn, err := NewFile(path, zapcore.DebugLevel)
	require.NoError(t, err)

	l.Infow("Clock started", "side", "player1")
	require.NoError(t, closeFn())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Clock started")
	require.Contains(t, string(contents), "player1")

	_, _, err = NewFile(filepath.Join(t.TempDir(), "missing", "x.log"), zapcore.InfoLevel)
	require.Error(t, err)
}

// TestWithLevel verifies the option overrides the level the logger was built with.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chessclock.log")

	l, closeFn, err := NewFile(path, zapcore.InfoLevel, WithLevel(zapcore.DebugLevel))
	require.NoError(t, err)

	l.Debugw("Clock update", "remaining1", "4:59")
	l.With("session_id", "abc").Debug("Scoped update")
	require.NoError(t, closeFn())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Clock update")
	require.Contains(t, string(contents), "Scoped update")

	quiet, closeQuiet, err := NewFile(path, zapcore.DebugLevel, WithLevel(zapcore.ErrorLevel))
	require.NoError(t, err)

	quiet.Warn("Settings change rejected")
	require.NoError(t, closeQuiet())

	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(contents), "Settings change rejected")
}
