package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/jonathan/sng-admin/internal/apperr"
)

// KVClient is the key-value transport used by KVBackend.
type KVClient interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// KVBackend keeps collections in a remote key-value store. A missing key is
// seeded from the local file snapshot on first read.
type KVBackend struct {
	client KVClient
	seed   Backend
}

// NewKVBackend creates a KV backend; seed supplies first-run snapshots.
func NewKVBackend(client KVClient, seed Backend) *KVBackend {
	return &KVBackend{client: client, seed: seed}
}

// Name implements Backend.
func (b *KVBackend) Name() string { return "kv" }

// Read implements Backend. The stored value is either the collection JSON
// itself or a JSON string that encodes it; both forms are accepted.
func (b *KVBackend) Read(ctx context.Context, ref Ref) (json.RawMessage, error) {
	if b.client == nil {
		return nil, apperr.New(apperr.KVUnavailable, "kv client is not configured")
	}

	value, found, err := b.client.Get(ctx, ref.Key)
	if err != nil {
		return nil, apperr.Wrap(apperr.KVUnavailable, "kv get "+ref.Key, err)
	}

	if !found {
		return b.seedKey(ctx, ref)
	}

	payload, err := decodeKVValue([]byte(value), ref)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *KVBackend) seedKey(ctx context.Context, ref Ref) (json.RawMessage, error) {
	if b.seed == nil {
		return nil, apperr.New(apperr.KVUnavailable, "no snapshot to seed "+ref.Key)
	}
	initial, err := b.seed.Read(ctx, ref)
	if err != nil {
		return nil, apperr.Wrap(apperr.KVUnavailable, "seed "+ref.Key+" from "+ref.Name, err)
	}
	if err := b.client.Set(ctx, ref.Key, string(initial)); err != nil {
		return nil, apperr.Wrap(apperr.KVUnavailable, "kv set "+ref.Key, err)
	}
	return initial, nil
}

// Write implements Backend.
func (b *KVBackend) Write(ctx context.Context, ref Ref, payload json.RawMessage) error {
	if b.client == nil {
		return apperr.New(apperr.KVUnavailable, "kv client is not configured")
	}
	if err := b.client.Set(ctx, ref.Key, string(payload)); err != nil {
		return apperr.Wrap(apperr.KVUnavailable, "kv set "+ref.Key, err)
	}
	return nil
}

// decodeKVValue accepts structured JSON of the right shape, or a JSON
// string whose content is. Anything else is corruption, except that an
// object ref tolerates a string holding any valid JSON.
func decodeKVValue(value []byte, ref Ref) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(value, utf8BOM))

	if hasShape(trimmed, ref.Shape) {
		if !json.Valid(trimmed) {
			return nil, invalidPayload(ref, errors.New("invalid JSON"))
		}
		return json.RawMessage(trimmed), nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, invalidPayload(ref, err)
		}
		payload, err := parsePayload([]byte(inner), ref.Name, ref.Shape)
		if err != nil {
			// A string holding valid JSON of another type reads as an empty
			// object; the caller fills it from defaults.
			var shapeErr *ShapeError
			if ref.Shape == Object && errors.As(err, &shapeErr) && shapeErr.Reason == "" {
				return json.RawMessage(`{}`), nil
			}
			return nil, invalidPayload(ref, err)
		}
		return payload, nil
	}

	return nil, invalidPayload(ref, &ShapeError{Name: ref.Key, Shape: ref.Shape})
}

func invalidPayload(ref Ref, cause error) error {
	return apperr.Wrap(apperr.KVInvalidPayload, "value at "+ref.Key+" is not a JSON "+ref.Shape.String(), cause)
}
