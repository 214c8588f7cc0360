package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Outcome labels a finished submission
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"  // Back-office stored it
	OutcomeRejected  Outcome = "rejected"  // Business rule rejection
	OutcomeFailed    Outcome = "failed"    // Transport or unknown failure
	OutcomeDuplicate Outcome = "duplicate" // Blocked by the in-flight guard
)

// LatencyBuckets are histogram boundaries in seconds for HTTP and
// back-office call latency
var LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// BusinessMetrics counts collections, batch sales and discarded debt loads.
// A nil *BusinessMetrics records nothing.
type BusinessMetrics struct {
	logger *zap.Logger

	collectionTotal   metric.Int64Counter
	collectionAmount  metric.Int64Counter
	batchSaleTotal    metric.Int64Counter
	batchSaleItems    metric.Int64Counter
	staleDiscardTotal metric.Int64Counter
	backofficeLatency metric.Float64Histogram
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics registers the business instruments on cfg.Meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}
	m := cfg.Meter

	var err error
	if bm.collectionTotal, err = m.Int64Counter("backoffice_collection_submitted_total",
		metric.WithDescription("Collections submitted to the back-office by outcome"),
		metric.WithUnit("{collections}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create collection counter: %w", err)
	}
	if bm.collectionAmount, err = m.Int64Counter("backoffice_collection_amount_total",
		metric.WithDescription("Accepted collection amount in cents"),
		metric.WithUnit("{cents}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create collection amount counter: %w", err)
	}
	if bm.batchSaleTotal, err = m.Int64Counter("backoffice_batch_sale_submitted_total",
		metric.WithDescription("Batch sales submitted to the back-office by outcome"),
		metric.WithUnit("{batches}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create batch sale counter: %w", err)
	}
	if bm.batchSaleItems, err = m.Int64Counter("backoffice_batch_sale_items_total",
		metric.WithDescription("Client entries in accepted batch sales"),
		metric.WithUnit("{items}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create batch item counter: %w", err)
	}
	if bm.staleDiscardTotal, err = m.Int64Counter("backoffice_debt_load_stale_total",
		metric.WithDescription("Debt snapshot responses discarded because a newer load was issued"),
		metric.WithUnit("{responses}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stale discard counter: %w", err)
	}
	if bm.backofficeLatency, err = m.Float64Histogram("backoffice_request_duration_seconds",
		metric.WithDescription("Latency of calls to the back-office API"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(LatencyBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create back-office latency histogram: %w", err)
	}

	return bm, nil
}

// RecordCollection counts a finished collection submission
func (bm *BusinessMetrics) RecordCollection(ctx context.Context, outcome Outcome, amountCents int64) {
	if bm == nil {
		return
	}
	bm.collectionTotal.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(string(outcome))))
	if outcome == OutcomeAccepted && amountCents > 0 {
		bm.collectionAmount.Add(ctx, amountCents)
	}
}

// RecordBatchSale counts a finished batch submission
func (bm *BusinessMetrics) RecordBatchSale(ctx context.Context, outcome Outcome, saleType string, items int) {
	if bm == nil {
		return
	}
	bm.batchSaleTotal.Add(ctx, 1, metric.WithAttributes(
		AttrOutcome.String(string(outcome)),
		AttrSaleType.String(saleType),
	))
	if outcome == OutcomeAccepted && items > 0 {
		bm.batchSaleItems.Add(ctx, int64(items), metric.WithAttributes(AttrSaleType.String(saleType)))
	}
}

// RecordStaleDiscard counts a debt snapshot that arrived after a newer load started
func (bm *BusinessMetrics) RecordStaleDiscard(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.staleDiscardTotal.Add(ctx, 1)
}

// RecordBackofficeCall records the latency of one outbound call
func (bm *BusinessMetrics) RecordBackofficeCall(ctx context.Context, endpoint string, status int, d time.Duration) {
	if bm == nil {
		return
	}
	bm.backofficeLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		AttrEndpoint.String(endpoint),
		AttrHTTPStatusCode.Int(status),
	))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
