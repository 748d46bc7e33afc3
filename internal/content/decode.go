package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/sng-admin/internal/apperr"
)

// Decode parses a JSON request body into a record. Syntax and type
// mismatches become Validation errors naming the offending field.
func Decode[T any](data []byte) (T, error) {
	var v T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return v, apperr.Invalid([]apperr.FieldError{{Field: "root", Message: "expected a JSON object"}})
	}

	if err := json.Unmarshal(data, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "root"
			}
			return v, apperr.Invalid([]apperr.FieldError{{
				Field:   field,
				Message: fmt.Sprintf("expected %s, got %s", typeErr.Type.String(), typeErr.Value),
			}})
		}
		return v, apperr.Wrap(apperr.Validation, "Некорректный JSON", err)
	}
	return v, nil
}
