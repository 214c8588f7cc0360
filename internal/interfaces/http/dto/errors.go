package dto

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/backoffice"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeBadRequest     = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON    = "ERR_INVALID_JSON"
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired   = "ERR_TOKEN_EXPIRED"
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeConflict       = "ERR_CONFLICT"
	ErrCodeUnavailable    = "ERR_BACKOFFICE_UNAVAILABLE"
	ErrCodeBackoffice     = "ERR_BACKOFFICE"
	ErrCodeRequestTooLong = "ERR_REQUEST_TOO_LARGE"
)

// Error categories
const (
	CategoryValidation = "validation"
	CategorySession    = "session"
	CategoryNotFound   = "not_found"
	CategoryConflict   = "conflict"
	CategoryTransport  = "transport"
	CategoryBusiness   = "business"
	CategoryServer     = "server"
)

// Messages shown when the back-office gives nothing better
const (
	MsgSaveFailed    = "No se pudo guardar"
	MsgUnavailable   = "No se pudo conectar con el servidor. Reintentá en unos segundos."
	MsgSessionEnded  = "La sesión venció. Volvé a iniciar sesión."
	MsgInvalidReply  = "El servidor respondió algo inesperado"
	MsgUnexpected    = "Ocurrió un error inesperado"
	MsgInvalidFields = "Revisá los datos ingresados"
)

// domainStatus maps local domain error codes to HTTP status codes.
// Codes not listed are local validation failures (422).
var domainStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"DRAFT_NOT_FOUND":      http.StatusNotFound,
	"INVALID_INPUT":        http.StatusBadRequest,
	"UNAUTHORIZED":         http.StatusUnauthorized,
	"SUBMISSION_IN_FLIGHT": http.StatusConflict,
	"TOO_MANY_DRAFTS":      http.StatusConflict,
	"INVALID_STATE":        http.StatusConflict,
}

var statusCategory = map[int]string{
	http.StatusBadRequest:          CategoryValidation,
	http.StatusUnprocessableEntity: CategoryValidation,
	http.StatusUnauthorized:        CategorySession,
	http.StatusNotFound:            CategoryNotFound,
	http.StatusConflict:            CategoryConflict,
}

// FromError classifies err into an HTTP status and error body
func FromError(err error) (int, ErrorInfo) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, ErrorInfo{
			Code:     ErrCodeValidation,
			Message:  MsgInvalidFields,
			Category: CategoryValidation,
			Details:  ValidationDetails(verrs),
		}
	}

	switch {
	case errors.Is(err, identity.ErrSessionExpired), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, ErrorInfo{Code: ErrCodeTokenExpired, Message: MsgSessionEnded, Category: CategorySession}
	case errors.Is(err, identity.ErrSessionMissing), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, backoffice.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorInfo{Code: ErrCodeUnauthorized, Message: MsgSessionEnded, Category: CategorySession}
	case errors.Is(err, backoffice.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorInfo{
			Code:      ErrCodeUnavailable,
			Message:   MsgUnavailable,
			Category:  CategoryTransport,
			Retryable: true,
		}
	case errors.Is(err, backoffice.ErrInvalidResponse):
		return http.StatusBadGateway, ErrorInfo{Code: ErrCodeBackoffice, Message: MsgInvalidReply, Category: CategoryServer}
	}

	var svcErr *backoffice.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.IsBusinessRejection() {
			return http.StatusUnprocessableEntity, ErrorInfo{
				Code:     svcErr.Code,
				Message:  svcErr.Text(),
				Category: CategoryBusiness,
				Severity: string(svcErr.Severity()),
				Tips:     svcErr.Tips,
			}
		}
		return http.StatusBadGateway, ErrorInfo{
			Code:       ErrCodeBackoffice,
			Message:    MsgSaveFailed,
			Category:   CategoryServer,
			ServerText: svcErr.Text(),
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status, ok := domainStatus[domainErr.Code]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		category := statusCategory[status]
		return status, ErrorInfo{Code: domainErr.Code, Message: domainErr.Message, Category: category}
	}

	return http.StatusInternalServerError, ErrorInfo{Code: ErrCodeInternal, Message: MsgUnexpected, Category: CategoryServer}
}

// ValidationDetails converts validator errors using JSON field names
func ValidationDetails(verrs validator.ValidationErrors) []ValidationDetail {
	details := make([]ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, ValidationDetail{
			Field:   e.Field(),
			Message: ValidationMessage(e),
		})
	}
	return details
}

// ValidationMessage returns a human-readable validation message
func ValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Campo obligatorio"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		if e.Type().Kind() == reflect.Slice {
			return "Debe tener al menos " + e.Param() + " elementos"
		}
		return "Debe ser al menos " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "oneof":
		return "Debe ser uno de: " + e.Param()
	case "gt":
		return "Debe ser mayor a " + e.Param()
	case "gte":
		return "Debe ser mayor o igual a " + e.Param()
	case "uuid":
		return "Identificador inválido"
	case "datetime":
		return "Fecha inválida"
	default:
		return "Valor inválido"
	}
}
