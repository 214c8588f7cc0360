package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	deliveryapp "github.com/erp/backoffice/internal/application/delivery"
	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
)

// BatchSaleService is the batch sale use case as seen by the HTTP layer
type BatchSaleService interface {
	Open(ctx context.Context, session identity.Session, routeID int64) (*deliveryapp.BatchView, error)
	Get(ctx context.Context, session identity.Session, draftID uuid.UUID) (*deliveryapp.BatchView, error)
	ChangeRoute(ctx context.Context, session identity.Session, draftID uuid.UUID, routeID int64) (*deliveryapp.BatchView, error)
	SetQuantity(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID, productID int64, raw string) (*deliveryapp.BatchView, error)
	SetCredit(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64, raw string) (*deliveryapp.BatchView, error)
	Exclude(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error)
	Include(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error)
	ClearClient(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error)
	RefreshPrices(ctx context.Context, session identity.Session, draftID uuid.UUID) (*deliveryapp.BatchView, error)
	Submit(ctx context.Context, session identity.Session, draftID uuid.UUID, input deliveryapp.SubmitInput) (*deliveryapp.SubmitResult, error)
	Close(ctx context.Context, session identity.Session, draftID uuid.UUID) error
}

// DeliveryHandler serves batch sale rounds
type DeliveryHandler struct {
	BaseHandler
	service BatchSaleService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(service BatchSaleService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// Open starts a round for a route.
// POST /repartos/:reparto_id/lotes
func (h *DeliveryHandler) Open(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	routeID, ok := h.int64Param(c, "reparto_id")
	if !ok {
		return
	}
	view, err := h.service.Open(c.Request.Context(), session, routeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Get returns the round view.
// GET /lotes/:id
func (h *DeliveryHandler) Get(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Get(ctx, session, id)
	})
}

// ChangeRoute rebuilds the round for another route.
// PUT /lotes/:id/reparto
func (h *DeliveryHandler) ChangeRoute(c *gin.Context) {
	var req dto.ChangeRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.ChangeRoute(ctx, session, id, req.RouteID)
	})
}

// SetQuantity sets one client/product cell.
// PUT /lotes/:id/cantidades
func (h *DeliveryHandler) SetQuantity(c *gin.Context) {
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.SetQuantity(ctx, session, id, req.ClientID, req.ProductID, req.Raw)
	})
}

// SetCredit sets the amount a client pays upfront.
// PUT /lotes/:id/clientes/:cliente_id/a-cuenta
func (h *DeliveryHandler) SetCredit(c *gin.Context) {
	clientID, ok := h.int64Param(c, "cliente_id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.SetCredit(ctx, session, id, clientID, req.Raw)
	})
}

// Exclude hides a client from this round.
// POST /lotes/:id/clientes/:cliente_id/exclusion
func (h *DeliveryHandler) Exclude(c *gin.Context) {
	h.withClient(c, h.service.Exclude)
}

// Include brings an excluded client back.
// DELETE /lotes/:id/clientes/:cliente_id/exclusion
func (h *DeliveryHandler) Include(c *gin.Context) {
	h.withClient(c, h.service.Include)
}

// ClearClient zeroes a client's quantities and credit.
// DELETE /lotes/:id/clientes/:cliente_id
func (h *DeliveryHandler) ClearClient(c *gin.Context) {
	h.withClient(c, h.service.ClearClient)
}

// RefreshPrices reloads the price list and recomputes the round.
// POST /lotes/:id/precios
func (h *DeliveryHandler) RefreshPrices(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.RefreshPrices(ctx, session, id)
	})
}

// Submit sends the round as one batch.
// POST /lotes/:id/enviar
func (h *DeliveryHandler) Submit(c *gin.Context) {
	var req dto.SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	input := deliveryapp.SubmitInput{
		SellerID:     req.SellerID,
		SaleType:     delivery.SaleType(req.SaleType),
		Date:         req.Date,
		Observations: req.Observations,
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Submit(ctx, session, id, input)
	})
}

// Close discards the round.
// DELETE /lotes/:id
func (h *DeliveryHandler) Close(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	if err := h.service.Close(c.Request.Context(), session, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *DeliveryHandler) withClient(c *gin.Context, fn func(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error)) {
	clientID, ok := h.int64Param(c, "cliente_id")
	if !ok {
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return fn(ctx, session, id, clientID)
	})
}

func (h *DeliveryHandler) withDraft(c *gin.Context, fn func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error)) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), session, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
