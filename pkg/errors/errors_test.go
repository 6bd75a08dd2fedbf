package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unsupported format: %q", "bmp")
	assert.Equal(t, ErrCodeInvalidFormat, err.Code)
	assert.Equal(t, `INVALID_FORMAT: unsupported format: "bmp"`, err.Error())
	assert.Nil(t, errors.Unwrap(err))

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeUnavailable, cause, "connect to %s", "neo4j://localhost:7687")
	assert.Equal(t, "UNAVAILABLE: connect to neo4j://localhost:7687: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeMissingIdentity, "structure has no name")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", inner, ErrCodeMissingIdentity, "structure has no name"},
		{"wrapped with fmt", fmt.Errorf("render: %w", inner), ErrCodeMissingIdentity, "structure has no name"},
		{"outermost code wins", Wrap(ErrCodeInternal, inner, "emit node"), ErrCodeInternal, "emit node"},
		{"plain", errors.New("boom"), "", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeFileNotFound))
		})
	}

	assert.False(t, Is(nil, ErrCodeInvalidInput))
	assert.Empty(t, GetCode(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidFormat, http.StatusBadRequest},
		{ErrCodeInvalidParser, http.StatusBadRequest},
		{ErrCodeInvalidColor, http.StatusBadRequest},
		{ErrCodeMissingIdentity, http.StatusUnprocessableEntity},
		{ErrCodeFileNotFound, http.StatusNotFound},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(fmt.Errorf("handler: %w", New(tt.code, "x"))))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidParser,
		ErrCodeInvalidColor, ErrCodeInvalidConfig, ErrCodeTooLarge,
		ErrCodeMissingIdentity, ErrCodeFileNotFound, ErrCodeUnavailable,
		ErrCodeInternal, ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}
