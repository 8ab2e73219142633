package logger

import (
	"os"
	"path/filepath"
	"testing"

	"fooddetect/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesLevelFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := NewLogger(&config.Config{LogDirectory: dir, LogMaxSizeMB: 1})
	defer l.Close()

	l.Info("processed %s", "banana.jpg")
	l.Warning("slow detector: %dms", 1500)
	l.Error("failed: %v", os.ErrNotExist)

	info, err := os.ReadFile(filepath.Join(dir, InfoFile))
	require.NoError(t, err)
	assert.Contains(t, string(info), "processed banana.jpg")
	assert.Contains(t, string(info), "logger_test.go")

	warn, err := os.ReadFile(filepath.Join(dir, WarningFile))
	require.NoError(t, err)
	assert.Contains(t, string(warn), "slow detector: 1500ms")

	errs, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "file does not exist")
	assert.NotContains(t, string(errs), "processed")
}

func TestNewNop_Discards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("x %d", 1)
		l.Warning("y")
		l.Error("z")
	})
	assert.NoError(t, l.Close())
}
