package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tradelog/backend/internal/infrastructure/config"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestStartServiceSpan_RecordsAttributesAndErrors(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "voucher", "pay",
		WithAttribute(SpanAttrCategory, "freight"),
		WithSpanKind(trace.SpanKindServer),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	SetAttributes(span,
		SpanAttrVoucherNumber, "LCV-0001",
		SpanAttrAmount, decimal.RequireFromString("2.5"),
		SpanAttrVoucherCount, 3,
		42, "ignored key",
		"dangling",
	)
	RecordError(span, errors.New("payable already paid"))
	RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "voucher.pay", s.Name())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "payable already paid", s.Status().Description)

	attrs := attrMap(s.Attributes())
	assert.Equal(t, "freight", attrs[SpanAttrCategory])
	assert.Equal(t, "LCV-0001", attrs[SpanAttrVoucherNumber])
	assert.Equal(t, "2.500", attrs[SpanAttrAmount])
	assert.Equal(t, "3", attrs[SpanAttrVoucherCount])
	assert.NotContains(t, attrs, "dangling")
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		RecordError(nil, errors.New("x"))
	})
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{}, "test", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer(TracerName))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource(t *testing.T) {
	res, err := newResource("landed-cost-service", "1.2.3")
	require.NoError(t, err)
	attrs := attrMap(res.Attributes())
	assert.Equal(t, "landed-cost-service", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
}
