package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prose-humanizer/internal/ingestion"
	"github.com/jonathan/prose-humanizer/internal/schemas"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "text", Message: "is required"}
	assert.Equal(t, "validation error: text - is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrNotFound(t *testing.T) {
	err := &ErrNotFound{Resource: "run", ID: "abc"}
	assert.Equal(t, "run not found: abc", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrStorageDisabled(t *testing.T) {
	err := &ErrStorageDisabled{}
	assert.Equal(t, "run storage is not configured", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "intensity", Message: "out of range"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped ErrValidation",
			err:      fmt.Errorf("decode: %w", &ErrValidation{Field: "text", Message: "empty"}),
			expected: http.StatusBadRequest,
		},
		{
			name:     "schema ValidationError",
			err:      &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "intensity", Message: "too big"}}},
			expected: http.StatusBadRequest,
		},
		{
			name:     "body too large",
			err:      &http.MaxBytesError{Limit: 10},
			expected: http.StatusRequestEntityTooLarge,
		},
		{
			name:     "ErrNotFound",
			err:      &ErrNotFound{Resource: "run", ID: "x"},
			expected: http.StatusNotFound,
		},
		{
			name:     "fetch failure",
			err:      fmt.Errorf("%w: timeout", ingestion.ErrHTTPRequestFailed),
			expected: http.StatusBadGateway,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
