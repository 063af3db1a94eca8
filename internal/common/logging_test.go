package common

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closer, err := NewLogger(&console, path, "info")
	require.NoError(t, err)
	logger.Info("connected to database", "rows", 3)
	logger.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, out := range []string{console.String(), string(data)} {
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, `msg="connected to database"`)
		assert.Contains(t, out, "source=")
		assert.NotContains(t, out, "hidden")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
