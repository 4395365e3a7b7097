package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NetroScript/tf2pickup-server/internal/history"
	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidRole       = "INVALID_ROLE"
	CodeInvalidGame       = "INVALID_GAME"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeAdminNotFound     = "ADMIN_NOT_FOUND"
	CodeGameNotFound      = "GAME_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeNotEligible       = "NOT_ELIGIBLE"
	CodeLookupFailed      = "LOOKUP_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status WriteError would use for err
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var eligibility *model.EligibilityError
	if errors.As(err, &eligibility) {
		return &httpError{http.StatusForbidden, APIError{CodeNotEligible, "Player is not eligible: " + eligibility.Reason}}
	}

	var lookup *model.ExternalLookupError
	if errors.As(err, &lookup) {
		return &httpError{http.StatusBadGateway, APIError{CodeLookupFailed, "Could not verify the player with " + lookup.Service}}
	}

	switch {
	case errors.Is(err, model.ErrAdminNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAdminNotFound, "Admin not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
	case errors.Is(err, model.ErrPlayerAlreadyRegistered):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyRegistered, "Player is already registered"}}
	case errors.Is(err, model.ErrInvalidRole):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRole, err.Error()}}
	case errors.Is(err, history.ErrInvalidGame):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGame, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Acting player required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
