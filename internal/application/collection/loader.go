package collection

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
)

const defaultLoadErrorMessage = "No se pudo cargar la deuda del cliente"

// DebtLoader fetches a client's debt into a draft. Every load takes a new
// ticket and only the response holding the latest ticket is installed;
// older responses are dropped without surfacing an error.
type DebtLoader struct {
	gateway receivable.Gateway
	metrics *telemetry.BusinessMetrics
}

// NewDebtLoader creates a loader
func NewDebtLoader(gateway receivable.Gateway, metrics *telemetry.BusinessMetrics) *DebtLoader {
	return &DebtLoader{gateway: gateway, metrics: metrics}
}

// Load refreshes d's snapshot. It returns the gateway error when this load
// was still current and failed; a stale response returns nil.
// d must not be locked by the caller.
func (l *DebtLoader) Load(ctx context.Context, session identity.Session, d *receivable.CollectionDraft) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "load_debt")
	defer span.End()

	d.Lock()
	ticket := d.BeginLoad()
	clientID := d.ClientID
	d.Unlock()

	span.SetAttributes(
		telemetry.DraftID(d.ID),
		telemetry.ClientID(clientID),
		telemetry.LoadTicket(ticket),
	)

	snapshot, err := l.gateway.LoadDebt(ctx, session, clientID)

	d.Lock()
	defer d.Unlock()

	if err != nil {
		if !d.FailLoad(ticket, loadErrorMessage(err)) {
			l.discardStale(ctx, d, ticket)
			return nil
		}
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("failed to load client debt",
			zap.Int64("cliente_id", clientID),
			zap.Error(err),
		)
		return err
	}

	if !d.CompleteLoad(ticket, snapshot) {
		l.discardStale(ctx, d, ticket)
		return nil
	}
	span.SetAttributes(telemetry.ItemCount(len(snapshot.Invoices)))
	telemetry.SetOK(span)
	return nil
}

func (l *DebtLoader) discardStale(ctx context.Context, d *receivable.CollectionDraft, ticket uint64) {
	l.metrics.RecordStaleDiscard(ctx)
	trace.SpanFromContext(ctx).AddEvent("stale_result_discarded", trace.WithAttributes(telemetry.LoadTicket(ticket)))
	logger.L(ctx).Warn("discarded stale debt response",
		zap.String("draft_id", d.ID.String()),
		zap.Uint64("ticket", ticket),
	)
}

type textError interface {
	Text() string
}

// loadErrorMessage picks the human-readable part of a gateway error
func loadErrorMessage(err error) string {
	var te textError
	if errors.As(err, &te) && te.Text() != "" {
		return te.Text()
	}
	return defaultLoadErrorMessage
}
