package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/unalkalkan/bookreader/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.LogConfig
		want zapcore.Level
	}{
		{"default level", types.LogConfig{}, zapcore.InfoLevel},
		{"debug", types.LogConfig{Level: "debug"}, zapcore.DebugLevel},
		{"upper case", types.LogConfig{Level: "WARN"}, zapcore.WarnLevel},
		{"development", types.LogConfig{Level: "error", Development: true}, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			defer logger.Sync()

			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(types.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
