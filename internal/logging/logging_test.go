package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAt(t *testing.T, verbose bool) string {
	t.Helper()
	prev := slog.Default()
	dir := t.TempDir()

	closeSink := Setup(dir, verbose)
	t.Cleanup(func() {
		slog.SetDefault(prev)
		_ = closeSink()
	})
	return filepath.Join(dir, logFileName)
}

func TestSetup_WritesToFile(t *testing.T) {
	logPath := setupAt(t, false)

	slog.Info("upload starting", "files", 3)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "upload starting")
	assert.Contains(t, string(data), "files=3")
}

func TestSetup_InfoLevelDropsDebug(t *testing.T) {
	logPath := setupAt(t, false)

	slog.Debug("noisy detail")
	slog.Info("kept")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "noisy detail")
	assert.Contains(t, string(data), "kept")
}

func TestSetup_VerboseKeepsDebug(t *testing.T) {
	logPath := setupAt(t, true)

	slog.Debug("wire detail", "status", 200)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wire detail")
}
