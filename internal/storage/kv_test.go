package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = value
	return nil
}

func TestKVBackend_SeedsMissingKeyFromFile(t *testing.T) {
	ref := testRef(t, Array)
	require.NoError(t, os.WriteFile(ref.Path, []byte(`[{"id":"seed"}]`), 0o644))

	kv := newFakeKV()
	backend := NewKVBackend(kv, NewFileBackend())

	payload, err := backend.Read(context.Background(), ref)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"seed"}]`, string(payload))
	assert.JSONEq(t, `[{"id":"seed"}]`, kv.values["sng:items"])

	// Second read is served from the store without reseeding.
	require.NoError(t, os.Remove(ref.Path))
	_, err = backend.Read(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, kv.sets)
}

func TestKVBackend_SeedFailure(t *testing.T) {
	ref := testRef(t, Array)
	backend := NewKVBackend(newFakeKV(), NewFileBackend())

	_, err := backend.Read(context.Background(), ref)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KVUnavailable))
}

func TestKVBackend_ValueForms(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		stored   string
		expected string
		kind     apperr.Kind
		wantErr  bool
	}{
		{name: "structured array", shape: Array, stored: `[{"id":"a"}]`, expected: `[{"id":"a"}]`},
		{name: "string encoded array", shape: Array, stored: `"[{\"id\":\"a\"}]"`, expected: `[{"id":"a"}]`},
		{name: "structured object", shape: Object, stored: `{"title":"x"}`, expected: `{"title":"x"}`},
		{name: "string encoded object", shape: Object, stored: `"{\"title\":\"x\"}"`, expected: `{"title":"x"}`},
		{name: "object where array expected", shape: Array, stored: `{"id":"a"}`, wantErr: true, kind: apperr.KVInvalidPayload},
		{name: "string of wrong shape for object", shape: Object, stored: `"[1,2]"`, expected: `{}`},
		{name: "string of invalid JSON for object", shape: Object, stored: `"{broken"`, wantErr: true, kind: apperr.KVInvalidPayload},
		{name: "string of wrong shape for array", shape: Array, stored: `"{\"id\":\"a\"}"`, wantErr: true, kind: apperr.KVInvalidPayload},
		{name: "structured array for object", shape: Object, stored: `[1]`, wantErr: true, kind: apperr.KVInvalidPayload},
		{name: "garbage", shape: Array, stored: `not json`, wantErr: true, kind: apperr.KVInvalidPayload},
		{name: "truncated", shape: Array, stored: `[{"id":`, wantErr: true, kind: apperr.KVInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := testRef(t, tt.shape)
			kv := newFakeKV()
			kv.values[ref.Key] = tt.stored

			payload, err := NewKVBackend(kv, nil).Read(context.Background(), ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(payload))
		})
	}
}

func TestKVBackend_TransportErrors(t *testing.T) {
	ref := testRef(t, Array)
	kv := newFakeKV()
	kv.getErr = errors.New("dial tcp: connection refused")
	backend := NewKVBackend(kv, NewFileBackend())

	_, err := backend.Read(context.Background(), ref)
	assert.True(t, apperr.Is(err, apperr.KVUnavailable))

	kv.setErr = errors.New("timeout")
	err = backend.Write(context.Background(), ref, []byte(`[]`))
	assert.True(t, apperr.Is(err, apperr.KVUnavailable))
}

func TestKVBackend_NoClient(t *testing.T) {
	backend := NewKVBackend(nil, nil)
	_, err := backend.Read(context.Background(), testRef(t, Array))
	assert.True(t, apperr.Is(err, apperr.KVUnavailable))
}
