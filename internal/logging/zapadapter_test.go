package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestZapLoggerForwardsEntries(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf))

	zl.Info("solver converged",
		zap.Int("evaluations", 42),
		zap.Float64("best_value", 1.5),
		zap.Bool("converged", true),
		zap.Duration("elapsed", 1500*time.Millisecond),
	)

	entries := decodeLogLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "solver converged", entry["message"])
	assert.Equal(t, float64(42), entry["evaluations"])
	assert.Equal(t, 1.5, entry["best_value"])
	assert.Equal(t, true, entry["converged"])
	assert.Equal(t, "1.5s", entry["elapsed"])
	assert.Contains(t, entry["caller"], "zapadapter_test.go")
}

func TestZapLoggerHonorsThreshold(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(WarnLevel, &buf))

	zl.Debug("dropped")
	zl.Info("also dropped")
	assert.Zero(t, buf.Len())

	zl.Error("kept")
	entries := decodeLogLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
}

func TestZapLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).With(zap.String("component", "solve"))

	zl.Warn("restart limit reached", zap.Int("restarts", 12))

	entries := decodeLogLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "solve", entries[0]["component"])
	assert.Equal(t, float64(12), entries[0]["restarts"])
}

func TestMapLevel(t *testing.T) {
	tests := []struct {
		in   zapcore.Level
		want LogLevel
	}{
		{zapcore.DebugLevel, DebugLevel},
		{zapcore.InfoLevel, InfoLevel},
		{zapcore.WarnLevel, WarnLevel},
		{zapcore.ErrorLevel, ErrorLevel},
		{zapcore.DPanicLevel, ErrorLevel},
		{zapcore.PanicLevel, ErrorLevel},
		{zapcore.FatalLevel, ErrorLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapLevel(tt.in), "level %v", tt.in)
	}
}
