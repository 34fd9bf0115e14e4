// Package server provides the HTTP REST API for the humanizer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/prose-humanizer/internal/ingestion"
	"github.com/jonathan/prose-humanizer/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrStorageDisabled indicates an endpoint needs a database the server was started without
type ErrStorageDisabled struct{}

func (e *ErrStorageDisabled) Error() string {
	return "run storage is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var notFound *ErrNotFound
	var storageDisabled *ErrStorageDisabled
	var schemaErr *schemas.ValidationError
	var maxBytes *http.MaxBytesError

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &storageDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingestion.ErrHTTPRequestFailed), errors.Is(err, ingestion.ErrNoContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
