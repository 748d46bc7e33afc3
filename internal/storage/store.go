package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the typed front of a Backend.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// BackendName reports which backend serves the store.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// ReadList decodes an array collection.
func ReadList[T any](ctx context.Context, s *Store, ref Ref) ([]T, error) {
	ref.Shape = Array
	payload, err := s.backend.Read(ctx, ref)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref.Name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteList replaces an array collection.
func WriteList[T any](ctx context.Context, s *Store, ref Ref, items []T) error {
	ref.Shape = Array
	if items == nil {
		items = []T{}
	}
	payload, err := encode(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ref.Name, err)
	}
	return s.backend.Write(ctx, ref, payload)
}

// ReadObject returns the raw payload of an object collection.
func (s *Store) ReadObject(ctx context.Context, ref Ref) (json.RawMessage, error) {
	ref.Shape = Object
	return s.backend.Read(ctx, ref)
}

// WriteObject replaces an object collection with v.
func (s *Store) WriteObject(ctx context.Context, ref Ref, v any) error {
	ref.Shape = Object
	payload, err := encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ref.Name, err)
	}
	return s.backend.Write(ctx, ref, payload)
}
