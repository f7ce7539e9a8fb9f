package logging

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/zorak1103/dockdeck/internal/metrics"
)

func TestConfigure(t *testing.T) {
	for _, devel := range []bool{false, true} {
		logger, err := Configure(devel)
		require.NoError(t, err)
		assert.Equal(t, devel, logger.Desugar().Core().Enabled(zapcore.DebugLevel))
	}
}

func TestEncoder_CountsWarnings(t *testing.T) {
	enc := newEncoder(zapcore.NewConsoleEncoder(zapcore.EncoderConfig{MessageKey: "msg"}))
	before := testutil.ToFloat64(metrics.WarningsMetric)

	for _, level := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		buf, err := enc.EncodeEntry(zapcore.Entry{Level: level, Message: "test"}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "test")
		buf.Free()
	}

	assert.InDelta(t, before+2, testutil.ToFloat64(metrics.WarningsMetric), 0)

	_, isCounting := enc.Clone().(encoder)
	assert.True(t, isCounting)
}
