package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/backoffice"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		category  string
		retryable bool
	}{
		{"local validation", receivable.ErrNothingAllocated, http.StatusUnprocessableEntity, "NOTHING_ALLOCATED", CategoryValidation, false},
		{"wrapped local validation", fmt.Errorf("submit: %w", delivery.ErrSellerRequired), http.StatusUnprocessableEntity, "SELLER_REQUIRED", CategoryValidation, false},
		{"draft not found", shared.ErrDraftNotFound, http.StatusNotFound, "DRAFT_NOT_FOUND", CategoryNotFound, false},
		{"in flight", shared.ErrSubmissionInFlight, http.StatusConflict, "SUBMISSION_IN_FLIGHT", CategoryConflict, false},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", CategoryValidation, false},
		{"missing session", identity.ErrSessionMissing, http.StatusUnauthorized, ErrCodeUnauthorized, CategorySession, false},
		{"expired session", identity.ErrSessionExpired, http.StatusUnauthorized, ErrCodeTokenExpired, CategorySession, false},
		{"transport", fmt.Errorf("%w: dial tcp: refused", backoffice.ErrUnavailable), http.StatusServiceUnavailable, ErrCodeUnavailable, CategoryTransport, true},
		{"bad reply", backoffice.ErrInvalidResponse, http.StatusBadGateway, ErrCodeBackoffice, CategoryServer, false},
		{"backoffice 401", &backoffice.ServiceError{Status: 401}, http.StatusUnauthorized, ErrCodeUnauthorized, CategorySession, false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal, CategoryServer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := FromError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, tt.retryable, info.Retryable)
		})
	}
}

func TestFromError_BusinessRejection(t *testing.T) {
	err := &backoffice.ServiceError{
		Status:  409,
		Code:    "DUPLICATE",
		Message: "Ya existe una cobranza idéntica",
		Tips:    []string{"Revisá el historial del cliente"},
	}

	status, info := FromError(fmt.Errorf("create: %w", err))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "DUPLICATE", info.Code)
	assert.Equal(t, CategoryBusiness, info.Category)
	assert.Equal(t, "warning", info.Severity)
	assert.Equal(t, "Ya existe una cobranza idéntica", info.Message)
	assert.Equal(t, []string{"Revisá el historial del cliente"}, info.Tips)
}

func TestFromError_UnrecognizedServerError(t *testing.T) {
	status, info := FromError(&backoffice.ServiceError{Status: 500, Raw: "  NullPointerException at line 42 "})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, MsgSaveFailed, info.Message)
	assert.Equal(t, "NullPointerException at line 42", info.ServerText)
}

func TestFromError_ValidatorErrors(t *testing.T) {
	type payload struct {
		Items []int `json:"items" validate:"required,min=1"`
	}
	v := validator.New()
	err := v.Struct(payload{Items: []int{}})
	require.Error(t, err)

	status, info := FromError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeValidation, info.Code)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "Debe tener al menos 1 elementos", info.Details[0].Message)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 10, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}
