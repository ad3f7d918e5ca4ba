// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrTokenInvalid  = errors.New("token invalid")
)

// AppError is an error that knows how to render itself as an HTTP
// response. Handlers pass them to JSONError; everything else collapses
// to a generic 500.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "bad_request", message)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "unauthorized", message)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, "forbidden", message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(http.StatusNotFound, "not_found", resource+" not found")
}

func ConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, "conflict", message)
}

func DuplicateError(resource string) *AppError {
	return NewAppError(
		http.StatusConflict,
		"duplicate",
		resource+" already exists",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		"token_expired",
		"access token has expired",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		"token_revoked",
		"access token has been revoked",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		"token_invalid",
		"access token is invalid",
	)
}

// QuotaExceededError carries the upgrade prompt: the client is expected
// to route the user to the plan page rather than retry.
func QuotaExceededError(message string) *AppError {
	e := NewAppError(http.StatusForbidden, "quota_exceeded", message)
	e.Details = map[string]any{"upgrade_required": true}
	return e
}
