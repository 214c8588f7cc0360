package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

// setupTestTracer installs an in-memory span recorder as the global provider
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

func TestSetup_AllDisabled(t *testing.T) {
	ctx := context.Background()
	p, err := telemetry.Setup(ctx, telemetry.Config{ServiceName: "test-service"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(ctx))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestSetup_ProfilingRequiresAddress(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), telemetry.Config{
		ServiceName: "test-service",
		Profiling:   telemetry.ProfilingConfig{Enabled: true},
	}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "profiling server address")
}

func TestNilProviders(t *testing.T) {
	var p *telemetry.Providers
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	draftID := uuid.New()

	_, span := telemetry.StartServiceSpan(context.Background(), "collection", "submit",
		telemetry.DraftID(draftID),
		telemetry.ClientID(7),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "collection.submit", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("cliente_id", 7))
	assert.Contains(t, spans[0].Attributes(), attribute.String("draft_id", draftID.String()))
}

func TestStartClientSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartClientSpan(context.Background(), "GET", "/cxc/deuda/7")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "backoffice GET /cxc/deuda/7", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), telemetry.AttrHTTPMethod.String("GET"))
}

func TestRecordErrorAndOK(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, failed := telemetry.StartServiceSpan(context.Background(), "collection", "load_debt",
		telemetry.LoadTicket(3),
	)
	telemetry.RecordError(failed, errors.New("boom"))
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	failed.End()

	_, ok := telemetry.StartServiceSpan(context.Background(), "delivery", "submit_batch",
		telemetry.RouteID(5), telemetry.ItemCount(2), telemetry.AmountCents(5000),
	)
	telemetry.SetOK(ok)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("load_ticket", 3))
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	assert.Len(t, spans[1].Attributes(), 3)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
	})
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordCollection(ctx, telemetry.OutcomeAccepted, 110000)
	bm.RecordCollection(ctx, telemetry.OutcomeRejected, 5000)
	bm.RecordBatchSale(ctx, telemetry.OutcomeAccepted, "fiado", 3)
	bm.RecordStaleDiscard(ctx)
	bm.RecordBackofficeCall(ctx, "GET /productos", 200, 15*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), sums["backoffice_collection_submitted_total"])
	assert.Equal(t, int64(110000), sums["backoffice_collection_amount_total"])
	assert.Equal(t, int64(1), sums["backoffice_batch_sale_submitted_total"])
	assert.Equal(t, int64(3), sums["backoffice_batch_sale_items_total"])
	assert.Equal(t, int64(1), sums["backoffice_debt_load_stale_total"])
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *telemetry.BusinessMetrics
	assert.NotPanics(t, func() {
		bm.RecordCollection(context.Background(), telemetry.OutcomeFailed, 0)
		bm.RecordBatchSale(context.Background(), telemetry.OutcomeDuplicate, "contado", 0)
		bm.RecordStaleDiscard(context.Background())
		bm.RecordBackofficeCall(context.Background(), "x", 500, time.Second)
	})
}
