package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
)

// Drafts is where open batch drafts live between requests
type Drafts interface {
	Put(owner string, id uuid.UUID, draft *delivery.BatchSaleDraft) error
	Get(owner string, id uuid.UUID) (*delivery.BatchSaleDraft, error)
	Remove(owner string, id uuid.UUID) bool
}

// BatchSaleServiceConfig wires a BatchSaleService
type BatchSaleServiceConfig struct {
	Gateway  delivery.Gateway
	Drafts   Drafts
	Guard    shared.InFlightGuard
	Policy   delivery.CreditPolicy
	Location *time.Location
	LockTTL  time.Duration
	Metrics  *telemetry.BusinessMetrics
}

// BatchSaleService drives delivery rounds: one quantity matrix per route,
// submitted as a single batch
type BatchSaleService struct {
	gateway  delivery.Gateway
	drafts   Drafts
	guard    shared.InFlightGuard
	policy   delivery.CreditPolicy
	location *time.Location
	lockTTL  time.Duration
	metrics  *telemetry.BusinessMetrics
	validate *validator.Validate
	now      func() time.Time
}

// NewBatchSaleService creates a BatchSaleService
func NewBatchSaleService(cfg BatchSaleServiceConfig) *BatchSaleService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = shared.DefaultInFlightConfig().TTL
	}
	return &BatchSaleService{
		gateway:  cfg.Gateway,
		drafts:   cfg.Drafts,
		guard:    cfg.Guard,
		policy:   cfg.Policy,
		location: loc,
		lockTTL:  ttl,
		metrics:  cfg.Metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Open starts a round for routeID. Route members, products and sellers are
// fetched concurrently.
func (s *BatchSaleService) Open(ctx context.Context, session identity.Session, routeID int64) (*BatchView, error) {
	if routeID <= 0 {
		return nil, delivery.ErrRouteRequired
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "delivery", "open_round", telemetry.RouteID(routeID))
	defer span.End()

	var (
		clients  []delivery.RouteClient
		products []delivery.Product
		sellers  []delivery.Seller
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.gateway.RouteClients(gctx, session, routeID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.gateway.Products(gctx, session)
		return err
	})
	g.Go(func() error {
		var err error
		sellers, err = s.gateway.Sellers(gctx, session)
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	d, err := delivery.NewBatchSaleDraft(session.ID, routeID, clients, products, sellers)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Put(session.ID, d.ID, d); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("batch draft opened",
		zap.String("draft_id", d.ID.String()),
		zap.Int64("reparto_id", routeID),
		zap.Int("clientes", len(clients)),
		zap.Int("productos", len(products)),
	)
	telemetry.SetOK(span)

	d.Lock()
	defer d.Unlock()
	return newBatchView(d), nil
}

// Get returns the current view of a draft
func (s *BatchSaleService) Get(_ context.Context, session identity.Session, draftID uuid.UUID) (*BatchView, error) {
	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}
	d.Lock()
	defer d.Unlock()
	return newBatchView(d), nil
}

// ChangeRoute switches the draft to another route, discarding the round
func (s *BatchSaleService) ChangeRoute(ctx context.Context, session identity.Session, draftID uuid.UUID, routeID int64) (*BatchView, error) {
	if routeID <= 0 {
		return nil, delivery.ErrRouteRequired
	}
	if _, err := s.editable(session, draftID); err != nil {
		return nil, err
	}
	clients, err := s.gateway.RouteClients(ctx, session, routeID)
	if err != nil {
		return nil, err
	}
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		return d.ChangeRoute(routeID, clients)
	})
}

// SetQuantity stores the count typed for one cell
func (s *BatchSaleService) SetQuantity(_ context.Context, session identity.Session, draftID uuid.UUID, clientID, productID int64, raw string) (*BatchView, error) {
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		_, err := d.SetQuantity(clientID, productID, raw)
		return err
	})
}

// SetCredit stores a client's upfront payment
func (s *BatchSaleService) SetCredit(_ context.Context, session identity.Session, draftID uuid.UUID, clientID int64, raw string) (*BatchView, error) {
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		_, err := d.SetCredit(clientID, raw)
		return err
	})
}

// Exclude hides a client from this round
func (s *BatchSaleService) Exclude(_ context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*BatchView, error) {
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		return d.Exclude(clientID)
	})
}

// Include shows a hidden client again
func (s *BatchSaleService) Include(_ context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*BatchView, error) {
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		return d.Include(clientID)
	})
}

// ClearClient zeroes a client's row
func (s *BatchSaleService) ClearClient(_ context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*BatchView, error) {
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		return d.ClearClient(clientID)
	})
}

// RefreshPrices fetches the product master again; subtotals follow the new prices
func (s *BatchSaleService) RefreshPrices(ctx context.Context, session identity.Session, draftID uuid.UUID) (*BatchView, error) {
	if _, err := s.editable(session, draftID); err != nil {
		return nil, err
	}
	products, err := s.gateway.Products(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.edit(session, draftID, func(d *delivery.BatchSaleDraft) error {
		d.RefreshPrices(products)
		return nil
	})
}

// Submit sends the round as one batch. On success the draft is closed; on
// failure quantities, credits and exclusions are kept as they were.
func (s *BatchSaleService) Submit(ctx context.Context, session identity.Session, draftID uuid.UUID, input SubmitInput) (*SubmitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delivery", "submit_batch", telemetry.DraftID(draftID))
	defer span.End()

	d, err := s.drafts.Get(session.ID, draftID)
	if err != nil {
		return nil, err
	}

	date := s.now().In(s.location)
	if input.Date != nil {
		date = *input.Date
	}
	details := delivery.BatchDetails{
		SellerID:     input.SellerID,
		SaleType:     input.SaleType,
		Date:         date,
		Observations: input.Observations,
	}

	d.Lock()
	payload, err := delivery.BuildBatchPayload(d, details, s.policy)
	if err == nil {
		err = s.validate.Struct(payload)
	}
	if err == nil {
		err = d.BeginSubmit()
	}
	if err != nil {
		d.Unlock()
		telemetry.RecordError(span, err)
		return nil, err
	}
	cmd := shared.NewCommand(d.Capture(), nil, func(state delivery.RoundState) {
		d.Lock()
		d.Restore(state)
		d.Unlock()
	})
	d.Unlock()

	defer func() {
		d.Lock()
		d.EndSubmit()
		d.Unlock()
	}()

	key := "lote:" + draftID.String()
	acquired, err := s.guard.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to guard submission: %w", err)
	}
	if !acquired {
		s.metrics.RecordBatchSale(ctx, telemetry.OutcomeDuplicate, payload.Tipo.String(), 0)
		return nil, shared.ErrSubmissionInFlight
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			logger.L(ctx).Warn("failed to release submission guard", zap.String("key", key), zap.Error(err))
		}
	}()

	span.SetAttributes(
		telemetry.RouteID(payload.RepartoID),
		telemetry.ItemCount(len(payload.Items)),
		telemetry.AmountCents(payload.Total().Cents()),
	)

	var receipt *delivery.BatchSaleReceipt
	err = cmd.Run(ctx, func(ctx context.Context) error {
		var callErr error
		receipt, callErr = s.gateway.CreateBatchSale(ctx, session, payload)
		return callErr
	})
	if err != nil {
		s.metrics.RecordBatchSale(ctx, outcomeOf(err), payload.Tipo.String(), len(payload.Items))
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("batch sale rejected",
			zap.String("draft_id", draftID.String()),
			zap.Int64("reparto_id", payload.RepartoID),
			zap.Error(err),
		)
		return nil, err
	}

	s.drafts.Remove(session.ID, draftID)
	s.metrics.RecordBatchSale(ctx, telemetry.OutcomeAccepted, payload.Tipo.String(), len(payload.Items))
	logger.L(ctx).Info("batch sale submitted",
		zap.String("draft_id", draftID.String()),
		zap.Int64("reparto_id", payload.RepartoID),
		zap.Int("items", len(payload.Items)),
		zap.Int("ventas", receipt.Count),
	)
	telemetry.SetOK(span)

	count := receipt.Count
	if count == 0 {
		count = len(receipt.SaleIDs)
	}
	return &SubmitResult{
		SaleIDs:      receipt.SaleIDs,
		Count:        count,
		Total:        payload.Total(),
		RefreshRoute: true,
	}, nil
}

// Close discards a draft
func (s *BatchSaleService) Close(ctx context.Context, session identity.Session, draftID uuid.UUID) error {
	if !s.drafts.Remove(session.ID, draftID) {
		return shared.ErrDraftNotFound
	}
	logger.L(ctx).Info("batch draft closed", zap.String("draft_id", draftID.String()))
	return nil
}

func (s *BatchSaleService) editable(session identity.Session, draftID uuid.UUID) (*delivery.BatchSaleDraft, error) {
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

func (s *BatchSaleService) edit(session identity.Session, draftID uuid.UUID, fn func(d *delivery.BatchSaleDraft) error) (*BatchView, error) {
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
	return newBatchView(d), nil
}

type businessRejection interface {
	IsBusinessRejection() bool
}

func outcomeOf(err error) telemetry.Outcome {
	var br businessRejection
	if errors.As(err, &br) && br.IsBusinessRejection() {
		return telemetry.OutcomeRejected
	}
	return telemetry.OutcomeFailed
}
