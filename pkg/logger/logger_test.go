package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "salesdesk/internal/core/context"
)

func TestFromContext_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = WithLogger(ctx, l)

	Info(ctx, "counter allocated", "number", "Acme/2024/3/00001")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "Acme/2024/3/00001", fields["number"])
	}
}

func TestNew_FallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "nonsense", OutputPaths: []string{"stderr"}})
	assert.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestSetDefault_BacksPackageHelpers(t *testing.T) {
	prev := defaultLogger.Load()
	t.Cleanup(func() { defaultLogger.Store(prev) })

	core, logs := observer.New(zapcore.WarnLevel)
	SetDefault(&Logger{zap.New(core).Sugar()})

	Info(context.Background(), "below level")
	Warn(context.Background(), "summary recompute failed", "summary_id", "s-1")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "summary recompute failed", entries[0].Message)
		assert.Equal(t, "s-1", entries[0].ContextMap()["summary_id"])
	}
}
