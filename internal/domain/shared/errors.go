package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput       = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized       = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState       = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrSubmissionInFlight = NewDomainError("SUBMISSION_IN_FLIGHT", "A submission for this draft is already in progress")
	ErrNotConfirmed       = NewDomainError("NOT_CONFIRMED", "The submission must be confirmed before it is sent")
	ErrDraftNotFound      = NewDomainError("DRAFT_NOT_FOUND", "El borrador no existe o expiró")
	ErrTooManyDrafts      = NewDomainError("TOO_MANY_DRAFTS", "Cerrá alguno de los borradores abiertos antes de abrir otro")
)
