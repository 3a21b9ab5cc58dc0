package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zap.AtomicLevel{
		"debug":   zap.NewAtomicLevelAt(zap.DebugLevel),
		" WARN ":  zap.NewAtomicLevelAt(zap.WarnLevel),
		"warning": zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
		"info":    zap.NewAtomicLevelAt(zap.InfoLevel),
		"chatty":  zap.NewAtomicLevelAt(zap.InfoLevel),
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
	}
	for in, want := range tests {
		assert.Equal(t, want.Level(), ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	assert.NoError(t, err)
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	cfg := NewConfig("error")
	assert.Equal(t, "json", cfg.Encoding)
	assert.False(t, cfg.Level.Enabled(zap.WarnLevel))
}
