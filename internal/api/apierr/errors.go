package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/derekprior/doubles/internal/generator"
	"github.com/derekprior/doubles/internal/worker"
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

const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeWorkersUnavailable  = "WORKERS_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeInternalError       = "INTERNAL_ERROR"
)

type httpError struct {
	status   int
	apiError APIError
}

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

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, generator.ErrInsufficientPlayers):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInsufficientPlayers, err.Error()}}
	case errors.Is(err, worker.ErrNotReady):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeWorkersUnavailable, "Generator workers are not ready"}}
	case errors.Is(err, worker.ErrTerminated):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeWorkersUnavailable, "Generator workers have stopped"}}
	case errors.Is(err, context.DeadlineExceeded):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeTimeout, "Generation timed out"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
