package backoffice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Transport-level errors
var (
	// ErrUnavailable wraps every failure to reach the back-office; callers may retry
	ErrUnavailable = errors.New("backoffice: service unavailable")
	// ErrInvalidResponse is returned when a 2xx body does not match the endpoint's shape
	ErrInvalidResponse = errors.New("backoffice: invalid response")
	// ErrUnauthorized is matched by a ServiceError with status 401
	ErrUnauthorized = errors.New("backoffice: session rejected")
)

// Severity tells the caller how to present a business rejection
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// businessCodes are rejections the back-office documents, with their severity
var businessCodes = map[string]Severity{
	"DUPLICATE":         SeverityWarning,
	"ALREADY_ASSIGNED":  SeverityWarning,
	"CAPACITY_EXCEEDED": SeverityError,
	"INSUFFICIENT_DEBT": SeverityError,
	"VALIDATION_ERROR":  SeverityError,
	"NOT_FOUND":         SeverityError,
}

// ServiceError is a non-2xx answer carrying the {code, mensajeError, tips, details} envelope
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Tips    []string
	Details map[string]any
	// Raw is the body text when it could not be parsed as an envelope
	Raw string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Raw
	}
	if e.Code == "" {
		return fmt.Sprintf("backoffice: HTTP %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backoffice: HTTP %d %s: %s", e.Status, e.Code, msg)
}

// Is lets errors.Is(err, ErrUnauthorized) and errors.Is(err, shared.ErrUnauthorized)
// match a 401
func (e *ServiceError) Is(target error) bool {
	if e.Status != 401 {
		return false
	}
	return target == ErrUnauthorized || target == shared.ErrUnauthorized
}

// IsBusinessRejection reports whether the code is a documented business rule
func (e *ServiceError) IsBusinessRejection() bool {
	_, ok := businessCodes[strings.ToUpper(e.Code)]
	return ok
}

// Severity returns the presentation severity of a business rejection
func (e *ServiceError) Severity() Severity {
	if s, ok := businessCodes[strings.ToUpper(e.Code)]; ok {
		return s
	}
	return SeverityError
}

// Text returns the best human-readable message available
func (e *ServiceError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(e.Raw)
}
