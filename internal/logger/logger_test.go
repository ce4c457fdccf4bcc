package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantErr     bool
	}{
		{name: "info production", level: "info"},
		{name: "debug development", level: "debug", development: true},
		{name: "error production", level: "error"},
		{name: "invalid level", level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.development)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestLogger_SetLevelKeepsLevelOnError(t *testing.T) {
	logger, err := NewLogger("warn", false)
	require.NoError(t, err)

	require.False(t, logger.atomicLevel.Enabled(zapcore.InfoLevel))
	require.Error(t, logger.SetLevel("loud"))
	require.Equal(t, "warn", logger.GetLevel())

	require.NoError(t, logger.SetLevel("debug"))
	require.True(t, logger.atomicLevel.Enabled(zapcore.DebugLevel))
}

func TestLogger_ComponentsShareLevel(t *testing.T) {
	base, err := NewLogger("info", false)
	require.NoError(t, err)
	require.Equal(t, "", base.GetComponent())

	idx := base.WithComponent("indexer")
	watcher := base.WithComponent("registry-watcher")
	require.Equal(t, "indexer", idx.GetComponent())
	require.Equal(t, "registry-watcher", watcher.GetComponent())

	require.NoError(t, base.SetLevel("debug"))
	require.Equal(t, "debug", idx.GetLevel())
	require.Equal(t, "debug", watcher.GetLevel())
}

func TestNewComponentLogger_PanicsOnInvalidLevel(t *testing.T) {
	require.Panics(t, func() {
		_ = NewComponentLogger("cursor", "chatty", false)
	})
}

func TestNewComponentLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name          string
		component     string
		config        LoggingConfig
		expectedLevel string
	}{
		{
			name:      "component override",
			component: "indexer",
			config: &stubLoggingConfig{
				defaultLevel:    "info",
				componentLevels: map[string]string{"indexer": "debug"},
			},
			expectedLevel: "debug",
		},
		{
			name:          "default level",
			component:     "log-store",
			config:        &stubLoggingConfig{defaultLevel: "warn"},
			expectedLevel: "warn",
		},
		{
			name:          "nil config",
			component:     "registry",
			config:        nil,
			expectedLevel: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewComponentLoggerFromConfig(tt.component, tt.config)
			require.Equal(t, tt.component, logger.GetComponent())
			require.Equal(t, tt.expectedLevel, logger.GetLevel())
		})
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	require.NotNil(t, logger.SugaredLogger)

	logger.Infow("batch committed", "from", 1, "to", 500)
	logger.Errorw("batch failed", "error", "boom")
}

type stubLoggingConfig struct {
	defaultLevel    string
	development     bool
	componentLevels map[string]string
}

func (s *stubLoggingConfig) GetComponentLevel(component string) string {
	if level, ok := s.componentLevels[component]; ok {
		return level
	}
	return s.defaultLevel
}

func (s *stubLoggingConfig) GetDefaultLevel() string {
	return s.defaultLevel
}

func (s *stubLoggingConfig) IsDevelopment() bool {
	return s.development
}
