package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	assert.False(t, l.Log.Core().Enabled(zap.ErrorLevel))
}

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		enabled zap.AtomicLevel
		wantErr bool
	}{
		{level: "Debug", enabled: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{level: "Info", enabled: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{level: "warn", enabled: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{level: "ERROR", enabled: zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New()
			err := l.Init(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			lvl := tt.enabled.Level()
			assert.True(t, l.Log.Core().Enabled(lvl))
			if lvl > zap.DebugLevel {
				assert.False(t, l.Log.Core().Enabled(lvl-1))
			}
		})
	}
}
