// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoPendingRequest = errors.New("no pending request to accept")
	ErrDuplicate        = errors.New("duplicate record")
	ErrStoreFailure     = errors.New("store failure")
	ErrPredictorFailure = errors.New("prediction failed")
)

// InvalidInput returns an ErrInvalidInput carrying a formatted reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// Store wraps an unexpected persistence error. Errors that already belong to the
// client-facing taxonomy pass through untouched.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoPendingRequest) || errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// Predictor wraps a failed, timed out or malformed prediction call.
func Predictor(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPredictorFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPredictorFailure, err)
}

// HTTPStatus maps an error onto the status code returned to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoPendingRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrPredictorFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the error text safe to hand back to a client. Store failures
// are reported generically; their detail only goes to the log.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStoreFailure):
		return "Internal server error"
	case errors.Is(err, ErrPredictorFailure):
		return "Prediction failed"
	default:
		return err.Error()
	}
}
