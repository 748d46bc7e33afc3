// Package apperr defines the closed set of failure kinds shared by the storage,
// content, session and asset layers. The HTTP layer maps each kind to a status.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the boundary translator.
type Kind int

const (
	// Internal is an unexpected failure; details are logged, never returned.
	Internal Kind = iota
	Validation
	Conflict
	NotFound
	Unauthorized
	ReadOnlyStorage
	KVUnavailable
	KVInvalidPayload
	BlobNotConfigured
	BlobUploadFailed
	UploadRejected
	PayloadTooLarge
)

var kindNames = map[Kind]string{
	Internal:          "INTERNAL",
	Validation:        "VALIDATION",
	Conflict:          "CONFLICT",
	NotFound:          "NOT_FOUND",
	Unauthorized:      "UNAUTHORIZED",
	ReadOnlyStorage:   "READ_ONLY_STORAGE",
	KVUnavailable:     "KV_UNAVAILABLE",
	KVInvalidPayload:  "KV_INVALID_PAYLOAD",
	BlobNotConfigured: "BLOB_NOT_CONFIGURED",
	BlobUploadFailed:  "BLOB_UPLOAD_FAILED",
	UploadRejected:    "UPLOAD_REJECTED",
	PayloadTooLarge:   "PAYLOAD_TOO_LARGE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// FieldError is a single violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error carried across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	for i, f := range e.Fields {
		if i == 0 && e.Message == "" {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Field)
		sb.WriteString(": ")
		sb.WriteString(f.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Invalid builds a Validation error listing every violated field.
func Invalid(fields []FieldError) *Error {
	return &Error{Kind: Validation, Fields: fields}
}

// KindOf reports the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
