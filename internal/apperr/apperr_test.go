package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := New(NotFound, "record not found")
	assert.Equal(t, "NOT_FOUND: record not found", err.Error())
}

func TestError_FieldsOnly(t *testing.T) {
	err := Invalid([]FieldError{
		{Field: "salaryTo", Message: "must be >= salaryFrom"},
		{Field: "slug", Message: "invalid format"},
	})
	assert.Equal(t, "VALIDATION: salaryTo: must be >= salaryFrom; slug: invalid format", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KVUnavailable, "kv get", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "direct", err: New(Conflict, "dup"), expected: Conflict},
		{name: "wrapped", err: fmt.Errorf("write: %w", New(ReadOnlyStorage, "")), expected: ReadOnlyStorage},
		{name: "plain", err: errors.New("boom"), expected: Internal},
		{name: "nil-safe plain", err: fmt.Errorf("x"), expected: Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KVInvalidPayload, "bad shape"))
	assert.True(t, Is(err, KVInvalidPayload))
	assert.False(t, Is(err, KVUnavailable))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "READ_ONLY_STORAGE", ReadOnlyStorage.String())
	assert.Equal(t, "KIND(99)", Kind(99).String())
}
