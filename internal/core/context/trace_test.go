package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestNewTraceContext_KeepsCallerIDs(t *testing.T) {
	tc := NewTraceContext(context.Background(), "req-1", "trace-1")
	assert.Equal(t, &TraceContext{TraceID: "trace-1", RequestID: "req-1"}, tc)
}

func TestNewTraceContext_UsesSpanTraceID(t *testing.T) {
	traceID := trace.TraceID{0x01, 0x02, 0x03}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{0x01}})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	tc := NewTraceContext(ctx, "", "")

	assert.Equal(t, traceID.String(), tc.TraceID)
	assert.NotEmpty(t, tc.RequestID)
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))

	ctx := WithTrace(context.Background(), &TraceContext{RequestID: "req-2"})
	assert.Equal(t, "req-2", GetRequestID(ctx))
}
