package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_RespectsLevel(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hdfsh.log")

	logger, err := New(Config{Level: "INFO", OutputPath: out})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("listing", zap.String("path", "/tmp"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "listing")
	assert.Contains(t, string(data), `"path": "/tmp"`)
}

func TestNew_UnknownLevelFallsBackToWarn(t *testing.T) {
	logger, err := New(Config{Level: "chatty", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}
