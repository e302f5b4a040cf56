package session

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeNetworkError    = "NETWORK_ERROR"
	TextCodeUnauthorized    = "UNAUTHORIZED"
	TextCodeForbidden       = "FORBIDDEN"
	TextCodeNotFound        = "NOT_FOUND"
	TextCodeValidation      = "VALIDATION_FAILED"
	TextCodeServerError     = "SERVER_ERROR"
	TextCodeUnknownError    = "UNKNOWN_ERROR"
	TextCodeInvalidRole     = "INVALID_ROLE"
	TextCodeRoleNotAssigned = "ROLE_NOT_ASSIGNED"
	TextCodeSessionExpired  = "SESSION_EXPIRED"
)

// ErrNetwork is returned when no response was received at all.
var ErrNetwork = errors.New("could not reach the server, check your connection", errors.CategoryOperation).
	WithTextCode(TextCodeNetworkError).
	WithCode(errors.CodeInternal)

// ErrUnauthorized maps HTTP 401. It additionally triggers the global
// session teardown at the dispatcher boundary.
var ErrUnauthorized = errors.New("your session has expired, please sign in again", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden maps HTTP 403. Surfaced to the caller, no session side effect.
var ErrForbidden = errors.New("you do not have permission to perform this action", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrNotFound maps HTTP 404.
var ErrNotFound = errors.New("the requested resource was not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrValidation maps HTTP 422 and carries a field-keyed error map in
// Metadata under "fields".
var ErrValidation = errors.New("some of the submitted fields are invalid", errors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(errors.CodeBadRequest)

// ErrServer maps HTTP 5xx.
var ErrServer = errors.New("the server encountered an error, try again later", errors.CategoryInternal).
	WithTextCode(TextCodeServerError).
	WithCode(errors.CodeInternal)

// ErrUnknown maps any status the taxonomy does not name.
var ErrUnknown = errors.New("an unexpected error occurred", errors.CategoryOperation).
	WithTextCode(TextCodeUnknownError).
	WithCode(errors.CodeInternal)

// ErrInvalidRole is returned when a role outside the closed enumeration is used.
var ErrInvalidRole = errors.New("role is not a recognized marketplace role", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(errors.CodeBadRequest)

// ErrRoleNotAssigned is returned when switching to a role the user does not hold.
var ErrRoleNotAssigned = errors.New("role is not assigned to the current user", errors.CategoryConflict).
	WithTextCode(TextCodeRoleNotAssigned).
	WithCode(errors.CodeConflict)

// ErrSessionExpired is returned when the stored token exists but its expiry
// has passed. Reaping the session is a separate, explicit action.
var ErrSessionExpired = errors.New("stored session token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrorEnvelope is the backend's error body shape.
type ErrorEnvelope struct {
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

func (e ErrorEnvelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ClassifyStatus maps a non-2xx HTTP status plus its decoded body into the
// fixed error taxonomy. Classification happens exactly once, at the
// dispatcher boundary; callers never see raw transport errors.
func ClassifyStatus(status int, envelope ErrorEnvelope) *errors.Error {
	base := taxonomyFor(status)

	meta := map[string]any{"status": status}
	if len(envelope.Fields) > 0 {
		meta["fields"] = envelope.Fields
	}

	msg := envelope.text()
	if msg == "" {
		msg = base.Message
	}

	return errors.New(msg, base.Category).
		WithTextCode(base.TextCode).
		WithCode(base.Code).
		WithMetadata(meta)
}

func taxonomyFor(status int) *errors.Error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrUnknown
	}
}

// FieldErrors extracts the field-keyed validation map from a classified
// error, or nil when the error carries none.
func FieldErrors(err error) map[string][]string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return nil
	}
	fields, ok := richErr.Metadata["fields"].(map[string][]string)
	if !ok {
		return nil
	}
	return fields
}

// IsUnauthorizedError checks for the taxonomy's 401 classification.
func IsUnauthorizedError(err error) bool {
	return hasTextCode(err, TextCodeUnauthorized)
}

// IsNetworkError checks whether no response was received at all.
func IsNetworkError(err error) bool {
	return hasTextCode(err, TextCodeNetworkError)
}

// IsValidationError checks for the taxonomy's 422 classification.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
