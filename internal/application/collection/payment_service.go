package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
)

// Drafts is where open collection drafts live between requests
type Drafts interface {
	Put(owner string, id uuid.UUID, draft *receivable.CollectionDraft) error
	Get(owner string, id uuid.UUID) (*receivable.CollectionDraft, error)
	Remove(owner string, id uuid.UUID) bool
}

// PaymentServiceConfig wires a PaymentService
type PaymentServiceConfig struct {
	Gateway  receivable.Gateway
	Drafts   Drafts
	Guard    shared.InFlightGuard
	Rules    receivable.PaymentRules
	Location *time.Location
	// LockTTL bounds how long a crashed submission keeps its guard key
	LockTTL time.Duration
	Metrics *telemetry.BusinessMetrics
}

// PaymentService drives collection drafts: loading debt, allocating,
// confirming and submitting payments
type PaymentService struct {
	gateway  receivable.Gateway
	drafts   Drafts
	guard    shared.InFlightGuard
	loader   *DebtLoader
	rules    receivable.PaymentRules
	location *time.Location
	lockTTL  time.Duration
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewPaymentService creates a PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = shared.DefaultInFlightConfig().TTL
	}
	rules := cfg.Rules
	if !rules.MinTotal.IsPositive() {
		rules = receivable.DefaultPaymentRules()
	}
	return &PaymentService{
		gateway:  cfg.Gateway,
		drafts:   cfg.Drafts,
		guard:    cfg.Guard,
		loader:   NewDebtLoader(cfg.Gateway, cfg.Metrics),
		rules:    rules,
		location: loc,
		lockTTL:  ttl,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Open creates a draft for clientID and loads its debt. A failed load is
// reported in the view's state, not as an error.
func (s *PaymentService) Open(ctx context.Context, session identity.Session, clientID int64) (*DraftView, error) {
	d, err := receivable.NewCollectionDraft(session.ID, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Put(session.ID, d.ID, d); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("collection draft opened",
		zap.String("draft_id", d.ID.String()),
		zap.Int64("cliente_id", clientID),
	)
	return s.load(ctx, session, d)
}

// Get returns the current view of a draft
func (s *PaymentService) Get(_ context.Context, session identity.Session, draftID uuid.UUID) (*DraftView, error) {
	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()
	return newDraftView(d), nil
}

// SwitchClient points the draft at another client and loads its debt.
// A load still running for the previous client is discarded when it lands.
func (s *PaymentService) SwitchClient(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*DraftView, error) {
	d, err := s.editable(session, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	err = d.SwitchClient(clientID)
	d.Unlock()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, session, d)
}

// Reload fetches the debt again; allocations are cleared
func (s *PaymentService) Reload(ctx context.Context, session identity.Session, draftID uuid.UUID) (*DraftView, error) {
	d, err := s.editable(session, draftID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, session, d)
}

// SetAllocation stores the amount typed for one invoice
func (s *PaymentService) SetAllocation(_ context.Context, session identity.Session, draftID uuid.UUID, invoiceID int64, raw string) (*DraftView, error) {
	return s.edit(session, draftID, func(d *receivable.CollectionDraft) error {
		_, err := d.SetAllocation(invoiceID, raw)
		return err
	})
}

// FillAll allocates every invoice's full balance
func (s *PaymentService) FillAll(_ context.Context, session identity.Session, draftID uuid.UUID) (*DraftView, error) {
	return s.edit(session, draftID, func(d *receivable.CollectionDraft) error {
		return d.FillAll()
	})
}

// SetDetails records the optional seller and observations
func (s *PaymentService) SetDetails(_ context.Context, session identity.Session, draftID uuid.UUID, sellerID *int64, observations string) (*DraftView, error) {
	return s.edit(session, draftID, func(d *receivable.CollectionDraft) error {
		d.SetDetails(sellerID, observations)
		return nil
	})
}

// Confirmation returns the summary to show before submitting
func (s *PaymentService) Confirmation(_ context.Context, session identity.Session, draftID uuid.UUID) (*receivable.Confirmation, error) {
	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()

	payload, err := receivable.BuildPayload(d, s.today(), s.rules)
	if err != nil {
		return nil, err
	}
	c := receivable.Confirm(d.Snapshot(), payload)
	return &c, nil
}

// Submit sends the payment once the person confirmed it. Edits are cleared
// as soon as the submission is accepted locally and restored if the
// back-office rejects it; on success the debt is reloaded.
func (s *PaymentService) Submit(ctx context.Context, session identity.Session, draftID uuid.UUID, confirmed bool) (*SubmitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "submit", telemetry.DraftID(draftID))
	defer span.End()

	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}

	d.Lock()
	payload, err := receivable.BuildPayload(d, s.today(), s.rules)
	if err == nil && !confirmed {
		err = shared.ErrNotConfirmed
	}
	if err == nil {
		err = d.BeginSubmit()
	}
	if err != nil {
		d.Unlock()
		telemetry.RecordError(span, err)
		return nil, err
	}
	confirmation := receivable.Confirm(d.Snapshot(), payload)
	cmd := shared.NewCommand(d.Capture(),
		func() {
			d.Lock()
			d.ClearEdits()
			d.Unlock()
		},
		func(state receivable.DraftState) {
			d.Lock()
			d.Restore(state)
			d.Unlock()
		},
	)
	d.Unlock()

	defer func() {
		d.Lock()
		d.EndSubmit()
		d.Unlock()
	}()

	key := "cobranza:" + draftID.String()
	acquired, err := s.guard.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to guard submission: %w", err)
	}
	if !acquired {
		s.metrics.RecordCollection(ctx, telemetry.OutcomeDuplicate, 0)
		return nil, shared.ErrSubmissionInFlight
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.L(ctx).Warn("failed to release submission guard", zap.String("key", key), zap.Error(err))
		}
	}()

	span.SetAttributes(
		telemetry.ClientID(payload.ClienteID),
		telemetry.AmountCents(payload.TotalCobrado.Cents()),
		telemetry.ItemCount(len(payload.Aplicaciones)),
	)

	var receipt *receivable.CollectionReceipt
	err = cmd.Run(ctx, func(ctx context.Context) error {
		var callErr error
		receipt, callErr = s.gateway.CreateCollection(ctx, session, payload)
		return callErr
	})
	if err != nil {
		s.metrics.RecordCollection(ctx, outcomeOf(err), payload.TotalCobrado.Cents())
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("collection rejected",
			zap.String("draft_id", draftID.String()),
			zap.Int64("cliente_id", payload.ClienteID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordCollection(ctx, telemetry.OutcomeAccepted, payload.TotalCobrado.Cents())
	logger.L(ctx).Info("collection submitted",
		zap.String("draft_id", draftID.String()),
		zap.Int64("cobranza_id", receipt.ID),
		zap.Int64("cliente_id", payload.ClienteID),
		zap.String("total", payload.TotalCobrado.String()),
	)

	// The payment is recorded; a failed refresh only leaves the draft in FAILED state
	if err := s.loader.Load(ctx, session, d); err != nil && errors.Is(err, shared.ErrUnauthorized) {
		return nil, err
	}

	d.Lock()
	d.ClearEdits()
	view := newDraftView(d)
	d.Unlock()

	telemetry.SetOK(span)
	return &SubmitResult{
		CollectionID: receipt.ID,
		Confirmation: confirmation,
		Draft:        view,
	}, nil
}

// Close discards a draft
func (s *PaymentService) Close(ctx context.Context, session identity.Session, draftID uuid.UUID) error {
	if !s.drafts.Remove(session.ID, draftID) {
		return shared.ErrDraftNotFound
	}
	logger.L(ctx).Info("collection draft closed", zap.String("draft_id", draftID.String()))
	return nil
}

// List returns a page of registered collections
func (s *PaymentService) List(ctx context.Context, session identity.Session, filter receivable.CollectionFilter) (*receivable.CollectionPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.gateway.ListCollections(ctx, session, filter)
}

// Detail returns one registered collection
func (s *PaymentService) Detail(ctx context.Context, session identity.Session, id int64) (*receivable.CollectionRecord, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidInput
	}
	return s.gateway.GetCollection(ctx, session, id)
}

func (s *PaymentService) load(ctx context.Context, session identity.Session, d *receivable.CollectionDraft) (*DraftView, error) {
	if err := s.loader.Load(ctx, session, d); err != nil && errors.Is(err, shared.ErrUnauthorized) {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()
	return newDraftView(d), nil
}

// editable returns the draft unless a submission is in flight
func (s *PaymentService) editable(session identity.Session, draftID uuid.UUID) (*receivable.CollectionDraft, error) {
	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()
	if d.IsSubmitting() {
		return nil, shared.ErrSubmissionInFlight
	}
	return d, nil
}

func (s *PaymentService) edit(session identity.Session, draftID uuid.UUID, fn func(d *receivable.CollectionDraft) error) (*DraftView, error) {
	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()
	if d.IsSubmitting() {
		return nil, shared.ErrSubmissionInFlight
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	return newDraftView(d), nil
}

func (s *PaymentService) today() time.Time {
	return s.now().In(s.location)
}

type businessRejection interface {
	IsBusinessRejection() bool
}

// outcomeOf classifies a failed submission for metrics
func outcomeOf(err error) telemetry.Outcome {
	var br businessRejection
	if errors.As(err, &br) && br.IsBusinessRejection() {
		return telemetry.OutcomeRejected
	}
	return telemetry.OutcomeFailed
}
