package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-inputfilter/framework/config"
	"github.com/km-arc/go-inputfilter/framework/logging"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{config.LogConfig{}, zapcore.InfoLevel},
		{config.LogConfig{Level: "debug"}, zapcore.DebugLevel},
		{config.LogConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{config.LogConfig{Level: "ERROR", Format: "console"}, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Level+"/"+tt.cfg.Format, func(t *testing.T) {
			logger, err := logging.New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
