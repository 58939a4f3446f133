package simplelogger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitdiff.log")
	t.Setenv(EnvLogFile, path)
	t.Setenv(EnvLogLevel, "")

	New().Info("hello", "who", "world")
	New().Info("again", "n", 123)
	New().Debug("hidden")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "msg=hello who=world\n")
	assert.Contains(t, s, "msg=again n=123\n")
	assert.NotContains(t, s, "hidden")
}

func TestNew_Level(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitdiff.log")
	t.Setenv(EnvLogFile, path)
	t.Setenv(EnvLogLevel, "debug")

	New().Debug("shown")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "level=DEBUG msg=shown")
}

func TestNew_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvLogFile, "")
	logger := New()
	require.NotNil(t, logger)
	logger.Error("should not panic")
}

func TestNew_NoOpWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogFile, dir)

	New().Info("ignored", "n", 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
