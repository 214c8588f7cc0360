package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
)

var (
	errInvalidDraftID = shared.NewDomainError("INVALID_INPUT", "Identificador de borrador inválido")
	errInvalidID      = shared.NewDomainError("INVALID_INPUT", "Identificador inválido")
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError classifies err and writes the error response. Server-side
// failures are logged with the request logger.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, info := dto.FromError(err)
	info.RequestID = c.GetString(middleware.RequestIDKey)

	log := logger.L(c.Request.Context())
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err), zap.Int("status", status))
	case info.Category == dto.CategoryBusiness:
		log.Warn("back-office rejected the request", zap.String("code", info.Code))
	}

	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(info))
}

// HandleBindError answers a failed ShouldBind call
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.HandleError(c, err)
		return
	}

	info := dto.ErrorInfo{
		Code:      dto.ErrCodeBadRequest,
		Message:   "Solicitud inválida",
		Category:  dto.CategoryValidation,
		RequestID: c.GetString(middleware.RequestIDKey),
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		info.Code = dto.ErrCodeInvalidJSON
		info.Message = "El cuerpo de la solicitud no es JSON válido"
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(info))
}

// session returns the caller's session or answers 401
func (h *BaseHandler) session(c *gin.Context) (identity.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		h.HandleError(c, identity.ErrSessionMissing)
		return identity.Session{}, false
	}
	return session, true
}

// draftID parses the :id path parameter or answers 400
func (h *BaseHandler) draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, errInvalidDraftID)
		return uuid.Nil, false
	}
	return id, true
}

// int64Param parses a positive numeric path parameter or answers 400
func (h *BaseHandler) int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(c, errInvalidID)
		return 0, false
	}
	return id, true
}
