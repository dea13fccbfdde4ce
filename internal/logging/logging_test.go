package logging

import (
	"testing"

	"project-management-api/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		want     zapcore.Level
		encoding string
		wantErr  bool
	}{
		{name: "default json", level: "info", format: "json", want: zapcore.InfoLevel, encoding: "json"},
		{name: "debug console", level: "debug", format: "console", want: zapcore.DebugLevel, encoding: "console"},
		{name: "warn upper case", level: "WARN", format: "json", want: zapcore.WarnLevel, encoding: "json"},
		{name: "unknown format falls back to json", level: "error", format: "pretty", want: zapcore.ErrorLevel, encoding: "json"},
		{name: "invalid level", level: "verbose", format: "json", wantErr: true},
		{name: "empty level", level: "", format: "json", want: zapcore.InfoLevel, encoding: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc, err := buildConfig(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid LOG_LEVEL")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.encoding, zc.Encoding)
			require.Equal(t, tt.want, zc.Level.Level())
			if tt.encoding == "json" {
				require.Equal(t, "ts", zc.EncoderConfig.TimeKey)
			}
		})
	}
}

func TestNew_InstallsGlobal(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	logger, err := New(&config.Config{LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)
	require.Same(t, logger, zap.L())
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = New(&config.Config{LogLevel: "verbose"})
	require.Error(t, err)
	require.Same(t, logger, zap.L())
}
