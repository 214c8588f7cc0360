package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	collectionapp "github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
)

// CollectionService is the collection use case as seen by the HTTP layer
type CollectionService interface {
	Open(ctx context.Context, session identity.Session, clientID int64) (*collectionapp.DraftView, error)
	Get(ctx context.Context, session identity.Session, draftID uuid.UUID) (*collectionapp.DraftView, error)
	SwitchClient(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*collectionapp.DraftView, error)
	Reload(ctx context.Context, session identity.Session, draftID uuid.UUID) (*collectionapp.DraftView, error)
	SetAllocation(ctx context.Context, session identity.Session, draftID uuid.UUID, invoiceID int64, raw string) (*collectionapp.DraftView, error)
	FillAll(ctx context.Context, session identity.Session, draftID uuid.UUID) (*collectionapp.DraftView, error)
	SetDetails(ctx context.Context, session identity.Session, draftID uuid.UUID, sellerID *int64, observations string) (*collectionapp.DraftView, error)
	Confirmation(ctx context.Context, session identity.Session, draftID uuid.UUID) (*receivable.Confirmation, error)
	Submit(ctx context.Context, session identity.Session, draftID uuid.UUID, confirmed bool) (*collectionapp.SubmitResult, error)
	Close(ctx context.Context, session identity.Session, draftID uuid.UUID) error
	List(ctx context.Context, session identity.Session, filter receivable.CollectionFilter) (*receivable.CollectionPage, error)
	Detail(ctx context.Context, session identity.Session, id int64) (*receivable.CollectionRecord, error)
}

// CollectionHandler serves collection drafts and the collection history
type CollectionHandler struct {
	BaseHandler
	service CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(service CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// Open starts a draft for a client and loads its debt.
// POST /cobranzas/borradores
func (h *CollectionHandler) Open(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.OpenCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	view, err := h.service.Open(c.Request.Context(), session, req.ClientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Get returns the draft view.
// GET /cobranzas/borradores/:id
func (h *CollectionHandler) Get(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Get(ctx, session, id)
	})
}

// SwitchClient points the draft at another client.
// PUT /cobranzas/borradores/:id/cliente
func (h *CollectionHandler) SwitchClient(c *gin.Context) {
	var req dto.SwitchClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.SwitchClient(ctx, session, id, req.ClientID)
	})
}

// SetDetails sets the optional seller and observations.
// PUT /cobranzas/borradores/:id/detalles
func (h *CollectionHandler) SetDetails(c *gin.Context) {
	var req dto.CollectionDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.SetDetails(ctx, session, id, req.SellerID, req.Observations)
	})
}

// Reload fetches a fresh debt snapshot.
// POST /cobranzas/borradores/:id/recargar
func (h *CollectionHandler) Reload(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Reload(ctx, session, id)
	})
}

// SetAllocation applies the typed amount to one invoice.
// PUT /cobranzas/borradores/:id/aplicaciones/:venta_id
func (h *CollectionHandler) SetAllocation(c *gin.Context) {
	invoiceID, ok := h.int64Param(c, "venta_id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.SetAllocation(ctx, session, id, invoiceID, req.Raw)
	})
}

// FillAll allocates every invoice's full balance.
// POST /cobranzas/borradores/:id/saldar-todo
func (h *CollectionHandler) FillAll(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.FillAll(ctx, session, id)
	})
}

// Confirmation returns the summary shown before submitting.
// GET /cobranzas/borradores/:id/confirmacion
func (h *CollectionHandler) Confirmation(c *gin.Context) {
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Confirmation(ctx, session, id)
	})
}

// Submit sends the collection. The body must carry confirmado=true.
// POST /cobranzas/borradores/:id/enviar
func (h *CollectionHandler) Submit(c *gin.Context) {
	var req dto.SubmitCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	h.withDraft(c, func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error) {
		return h.service.Submit(ctx, session, id, req.Confirmed)
	})
}

// Close discards the draft.
// DELETE /cobranzas/borradores/:id
func (h *CollectionHandler) Close(c *gin.Context) {
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

// List pages through registered collections.
// GET /cobranzas
func (h *CollectionHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ListCollectionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), session, receivable.CollectionFilter{
		ClientID: req.ClientID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Detail returns one registered collection.
// GET /cobranzas/:id
func (h *CollectionHandler) Detail(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	record, err := h.service.Detail(c.Request.Context(), session, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// withDraft resolves the session and draft id, runs fn and writes its result
func (h *CollectionHandler) withDraft(c *gin.Context, fn func(ctx context.Context, session identity.Session, id uuid.UUID) (any, error)) {
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
