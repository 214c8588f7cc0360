package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	deliveryapp "github.com/erp/backoffice/internal/application/delivery"
	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
)

type MockBatchSaleService struct {
	mock.Mock
}

func (m *MockBatchSaleService) view(args mock.Arguments) (*deliveryapp.BatchView, error) {
	if v := args.Get(0); v != nil {
		return v.(*deliveryapp.BatchView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBatchSaleService) Open(ctx context.Context, session identity.Session, routeID int64) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, routeID))
}

func (m *MockBatchSaleService) Get(ctx context.Context, session identity.Session, draftID uuid.UUID) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID))
}

func (m *MockBatchSaleService) ChangeRoute(ctx context.Context, session identity.Session, draftID uuid.UUID, routeID int64) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, routeID))
}

func (m *MockBatchSaleService) SetQuantity(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID, productID int64, raw string) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, clientID, productID, raw))
}

func (m *MockBatchSaleService) SetCredit(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64, raw string) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, clientID, raw))
}

func (m *MockBatchSaleService) Exclude(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, clientID))
}

func (m *MockBatchSaleService) Include(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, clientID))
}

func (m *MockBatchSaleService) ClearClient(ctx context.Context, session identity.Session, draftID uuid.UUID, clientID int64) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID, clientID))
}

func (m *MockBatchSaleService) RefreshPrices(ctx context.Context, session identity.Session, draftID uuid.UUID) (*deliveryapp.BatchView, error) {
	return m.view(m.Called(ctx, session, draftID))
}

func (m *MockBatchSaleService) Submit(ctx context.Context, session identity.Session, draftID uuid.UUID, input deliveryapp.SubmitInput) (*deliveryapp.SubmitResult, error) {
	args := m.Called(ctx, session, draftID, input)
	if v := args.Get(0); v != nil {
		return v.(*deliveryapp.SubmitResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBatchSaleService) Close(ctx context.Context, session identity.Session, draftID uuid.UUID) error {
	return m.Called(ctx, session, draftID).Error(0)
}

func setupDelivery(t *testing.T) (*MockBatchSaleService, http.Handler) {
	t.Helper()
	svc := new(MockBatchSaleService)
	h := NewDeliveryHandler(svc)

	r := newTestRouter(true)
	r.POST("/repartos/:reparto_id/lotes", h.Open)
	lotes := r.Group("/lotes")
	lotes.GET("/:id", h.Get)
	lotes.PUT("/:id/reparto", h.ChangeRoute)
	lotes.PUT("/:id/cantidades", h.SetQuantity)
	lotes.PUT("/:id/clientes/:cliente_id/a-cuenta", h.SetCredit)
	lotes.POST("/:id/clientes/:cliente_id/exclusion", h.Exclude)
	lotes.DELETE("/:id/clientes/:cliente_id/exclusion", h.Include)
	lotes.DELETE("/:id/clientes/:cliente_id", h.ClearClient)
	lotes.POST("/:id/precios", h.RefreshPrices)
	lotes.POST("/:id/enviar", h.Submit)
	lotes.DELETE("/:id", h.Close)

	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, r
}

func TestDeliveryHandler_Open(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	svc.On("Open", mock.Anything, testSession, int64(4)).
		Return(&deliveryapp.BatchView{ID: id, RouteID: 4}, nil)

	w := doJSON(r, http.MethodPost, "/repartos/4/lotes", "")

	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, id.String(), data["id"])
}

func TestDeliveryHandler_Open_BadRoute(t *testing.T) {
	_, r := setupDelivery(t)

	w := doJSON(r, http.MethodPost, "/repartos/0/lotes", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryHandler_SetQuantity(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	svc.On("SetQuantity", mock.Anything, testSession, id, int64(10), int64(1), "3").
		Return(&deliveryapp.BatchView{ID: id}, nil)

	w := doJSON(r, http.MethodPut, "/lotes/"+id.String()+"/cantidades",
		`{"cliente_id":10,"producto_id":1,"valor":"3"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeliveryHandler_SetQuantity_ClientNotInRoute(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	svc.On("SetQuantity", mock.Anything, testSession, id, int64(99), int64(1), "3").
		Return(nil, delivery.ErrClientNotInRoute)

	w := doJSON(r, http.MethodPut, "/lotes/"+id.String()+"/cantidades",
		`{"cliente_id":99,"producto_id":1,"valor":"3"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "CLIENT_NOT_IN_ROUTE", decode(t, w).Error.Code)
}

func TestDeliveryHandler_ClientRowOperations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		mockFn string
		args   []any
	}{
		{"set credit", http.MethodPut, "/clientes/10/a-cuenta", `{"valor":"500"}`, "SetCredit", []any{int64(10), "500"}},
		{"exclude", http.MethodPost, "/clientes/10/exclusion", "", "Exclude", []any{int64(10)}},
		{"include", http.MethodDelete, "/clientes/10/exclusion", "", "Include", []any{int64(10)}},
		{"clear", http.MethodDelete, "/clientes/10", "", "ClearClient", []any{int64(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, r := setupDelivery(t)
			id := uuid.New()
			args := append([]any{mock.Anything, testSession, id}, tt.args...)
			svc.On(tt.mockFn, args...).Return(&deliveryapp.BatchView{ID: id}, nil)

			w := doJSON(r, tt.method, "/lotes/"+id.String()+tt.path, tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestDeliveryHandler_ChangeRouteAndRefresh(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	svc.On("ChangeRoute", mock.Anything, testSession, id, int64(5)).Return(&deliveryapp.BatchView{ID: id, RouteID: 5}, nil)
	svc.On("RefreshPrices", mock.Anything, testSession, id).Return(&deliveryapp.BatchView{ID: id, RouteID: 5}, nil)

	w := doJSON(r, http.MethodPut, "/lotes/"+id.String()+"/reparto", `{"reparto_id":5}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/lotes/"+id.String()+"/precios", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeliveryHandler_Submit(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	date := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	input := deliveryapp.SubmitInput{
		SellerID:     3,
		SaleType:     delivery.SaleTypeAccount,
		Date:         &date,
		Observations: "vuelta mañana",
	}
	svc.On("Submit", mock.Anything, testSession, id, input).
		Return(&deliveryapp.SubmitResult{SaleIDs: []int64{1, 2}, Count: 2, RefreshRoute: true}, nil)

	w := doJSON(r, http.MethodPost, "/lotes/"+id.String()+"/enviar",
		`{"vendedor_id":3,"tipo":"a_cuenta","fecha":"2026-10-17T00:00:00Z","observaciones":"vuelta mañana"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, float64(2), data["cantidad"])
	assert.Equal(t, true, data["refrescar_reparto"])
}

func TestDeliveryHandler_Submit_InvalidSaleType(t *testing.T) {
	_, r := setupDelivery(t)

	w := doJSON(r, http.MethodPost, "/lotes/"+uuid.NewString()+"/enviar", `{"vendedor_id":3,"tipo":"trueque"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "tipo", resp.Error.Details[0].Field)
}

func TestDeliveryHandler_Close(t *testing.T) {
	svc, r := setupDelivery(t)
	id := uuid.New()
	svc.On("Close", mock.Anything, testSession, id).Return(nil)

	w := doJSON(r, http.MethodDelete, "/lotes/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
