package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service and client spans
const TracerName = "backoffice-bff"

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartServiceSpan starts an internal span named {service}.{operation}.
// The caller ends it.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "submit", telemetry.DraftID(id))
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartClientSpan starts a client span for one back-office call
func StartClientSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "backoffice "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrHTTPMethod.String(method),
			attribute.String("url.path", path),
		),
	)
}

// RecordError records err on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

// Span and metric attribute keys
var (
	AttrDraftID     = attribute.Key("draft_id")
	AttrClientID    = attribute.Key("cliente_id")
	AttrRouteID     = attribute.Key("reparto_id")
	AttrLoadTicket  = attribute.Key("load_ticket")
	AttrAmountCents = attribute.Key("amount_cents")
	AttrItemCount   = attribute.Key("items_count")
	AttrOutcome     = attribute.Key("outcome")
	AttrSaleType    = attribute.Key("sale_type")
	AttrEndpoint    = attribute.Key("endpoint")

	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")
)

// DraftID labels a span with the draft being worked on
func DraftID(id uuid.UUID) attribute.KeyValue { return AttrDraftID.String(id.String()) }

// ClientID labels a span with a back-office client id
func ClientID(id int64) attribute.KeyValue { return AttrClientID.Int64(id) }

// RouteID labels a span with a delivery route id
func RouteID(id int64) attribute.KeyValue { return AttrRouteID.Int64(id) }

// LoadTicket labels a debt load with its sequence number
func LoadTicket(ticket uint64) attribute.KeyValue { return AttrLoadTicket.Int64(int64(ticket)) }

// AmountCents labels a span with a money amount in cents
func AmountCents(cents int64) attribute.KeyValue { return AttrAmountCents.Int64(cents) }

// ItemCount labels a span with the number of invoices, applications or batch entries
func ItemCount(n int) attribute.KeyValue { return AttrItemCount.Int(n) }
