package telemetry_test

import (
	"context"
	"testing"

	"github.com/cvassistant/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewZapOTELCore_DisabledIsNop(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := telemetry.NewZapOTELCore("cv-assistant", lp, zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	core = telemetry.NewZapOTELCore("cv-assistant", nil, zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestBridge_KeepsOriginalOutput(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(obsCore)

	bridged := telemetry.Bridge(base, zapcore.NewNopCore())
	bridged.Info("uploaded", zap.String("key", "uploads/dev/cv.pdf"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "uploaded", logs.All()[0].Message)
}
