package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/libresine/libresine-server/internal/errors"
	"github.com/libresine/libresine-server/internal/importer"
	"github.com/libresine/libresine-server/internal/remote"
	"github.com/libresine/libresine-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := translateError(err); apiErr != nil {
				return apiErr
			}
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// translateError maps a known error to its API representation, or nil
// when the error carries no mapping of its own.
func translateError(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	// Store sentinels.
	switch {
	case errors.Is(err, store.ErrMovieNotFound):
		return &APIError{
			status:  http.StatusNotFound,
			Code:    string(domainerrors.CodeNotFound),
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrEmptyImport):
		return &APIError{
			status:  http.StatusConflict,
			Code:    string(domainerrors.CodeEmptyImport),
			Message: err.Error(),
		}
	}

	// Import session lifecycle.
	switch {
	case errors.Is(err, importer.ErrSessionNotFound):
		return &APIError{
			status:  http.StatusNotFound,
			Code:    string(domainerrors.CodeNotFound),
			Message: err.Error(),
		}
	case errors.Is(err, importer.ErrWrongState):
		return &APIError{
			status:  http.StatusConflict,
			Code:    string(domainerrors.CodeConflict),
			Message: err.Error(),
		}
	}

	// Upstream failures pass through as bad gateway, except a clean 404
	// which stays a 404 for the client.
	if remoteErr, ok := remote.AsError(err); ok {
		if remoteErr.NotFound() {
			return &APIError{
				status:  http.StatusNotFound,
				Code:    string(domainerrors.CodeNotFound),
				Message: remoteErr.Message,
			}
		}
		return &APIError{
			status:  http.StatusBadGateway,
			Code:    string(domainerrors.CodeRemoteService),
			Message: remoteErr.Message,
			Details: map[string]int{"upstreamStatus": remoteErr.Status},
		}
	}

	return nil
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusBadGateway:
		return string(domainerrors.CodeRemoteService)
	default:
		return string(domainerrors.CodeInternal)
	}
}
