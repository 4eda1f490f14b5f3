package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("console logger at debug", func(t *testing.T) {
		logger, err := New("debug", FormatConsole)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json logger at warn", func(t *testing.T) {
		logger, err := New("WARN", FormatJSON)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("loud", FormatConsole)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid level")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New("info", "xml")
		assert.Error(t, err)
	})
}
