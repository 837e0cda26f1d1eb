package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New("debug")
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDefaultsUnknownLevelToInfo(t *testing.T) {
	logger, err := New("chatty")
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
