package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Backend persists raw collection payloads.
type Backend interface {
	// Name is "file" or "kv".
	Name() string
	// Read returns the collection payload, already checked against ref.Shape.
	Read(ctx context.Context, ref Ref) (json.RawMessage, error)
	// Write replaces the collection payload.
	Write(ctx context.Context, ref Ref, payload json.RawMessage) error
}

var utf8BOM = []byte("\ufeff")

// ShapeError reports a payload that is not valid JSON of the expected shape.
type ShapeError struct {
	Name   string
	Shape  Shape
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("failed to read %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s must be an %s", e.Name, e.Shape)
}

// parsePayload strips a BOM and checks that data is JSON of the given shape.
func parsePayload(data []byte, name string, shape Shape) (json.RawMessage, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		return nil, &ShapeError{Name: name, Shape: shape, Reason: "invalid JSON"}
	}
	trimmed := bytes.TrimSpace(data)
	if !hasShape(trimmed, shape) {
		return nil, &ShapeError{Name: name, Shape: shape}
	}
	return json.RawMessage(trimmed), nil
}

func hasShape(data []byte, shape Shape) bool {
	if len(data) == 0 {
		return false
	}
	switch shape {
	case Object:
		return data[0] == '{'
	default:
		return data[0] == '['
	}
}

// encode serializes v with stable two-space indentation and a trailing newline.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
