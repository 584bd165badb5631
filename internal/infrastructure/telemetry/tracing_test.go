package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "invoice_generator", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrClientID, "client-1"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice_generator.generate", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	attrs := spans[0].Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "client-1", attrs[0].Value.AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	invoiceID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoiceID,
		telemetry.SpanAttrOrderCount, 2,
		telemetry.SpanAttrTotalUnits, int64(4),
		42, "skipped non-string key",
		"dangling",
	)
	span.End()

	attrs := map[string]string{}
	for _, kv := range sr.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, invoiceID.String(), attrs[telemetry.SpanAttrInvoiceID])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrOrderCount])
	assert.Equal(t, "4", attrs[telemetry.SpanAttrTotalUnits])
	assert.Len(t, attrs, 3)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	t.Run("marks span as error", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "failing")
		telemetry.RecordError(span, errors.New("insert failed"))
		span.End()

		ended := sr.Ended()
		last := ended[len(ended)-1]
		assert.Equal(t, codes.Error, last.Status().Code)
		assert.Equal(t, "insert failed", last.Status().Description)
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "fine")
		telemetry.RecordError(span, nil)
		telemetry.SetOK(span)
		span.End()

		ended := sr.Ended()
		assert.Equal(t, codes.Ok, ended[len(ended)-1].Status().Code)
	})

	t.Run("nil span is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() {
			telemetry.RecordError(nil, errors.New("x"))
			telemetry.SetAttributes(nil, "k", "v")
			telemetry.AddEvent(nil, "e")
			telemetry.SetOK(nil)
		})
	})
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "with-event")
	telemetry.AddEvent(span, "invoice_compensated", telemetry.SpanAttrInvoiceNumber, "INV-202603-0000AB")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "invoice_compensated", events[0].Name)
	assert.Equal(t, "INV-202603-0000AB", events[0].Attributes[0].Value.AsString())
}

func TestGetTraceID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "traced")
	defer span.End()
	assert.Len(t, telemetry.GetTraceID(ctx), 32)
}
