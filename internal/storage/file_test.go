package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingFS wraps the real filesystem and fails selected operations.
type failingFS struct {
	osFileSystem
	renameErr error
	writeErr  error
}

func (f failingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.osFileSystem.WriteFile(name, data, perm)
}

func (f failingFS) Rename(oldpath, newpath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.osFileSystem.Rename(oldpath, newpath)
}

func testRef(t *testing.T, shape Shape) Ref {
	t.Helper()
	return Ref{Name: "items.json", Path: filepath.Join(t.TempDir(), "items.json"), Key: "sng:items", Shape: shape}
}

func TestFileBackend_ReadStripsBOM(t *testing.T) {
	ref := testRef(t, Array)
	require.NoError(t, os.WriteFile(ref.Path, []byte("\ufeff[{\"id\":\"a1\"}]\n"), 0o644))

	payload, err := NewFileBackend().Read(context.Background(), ref)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1"}]`, string(payload))
}

func TestFileBackend_ReadWrongShape(t *testing.T) {
	ref := testRef(t, Array)
	require.NoError(t, os.WriteFile(ref.Path, []byte(`{"id":"a1"}`), 0o644))

	_, err := NewFileBackend().Read(context.Background(), ref)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "items.json must be an array", err.Error())
}

func TestFileBackend_ReadInvalidJSON(t *testing.T) {
	ref := testRef(t, Object)
	require.NoError(t, os.WriteFile(ref.Path, []byte(`{"title":`), 0o644))

	_, err := NewFileBackend().Read(context.Background(), ref)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read items.json")
}

func TestFileBackend_ReadMissing(t *testing.T) {
	ref := testRef(t, Array)

	_, err := NewFileBackend().Read(context.Background(), ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	ref.Fallback = []byte(`{"title":"default"}`)
	payload, err := NewFileBackend().Read(context.Background(), ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"default"}`, string(payload))
}

func TestFileBackend_WriteThenRead(t *testing.T) {
	ref := testRef(t, Array)
	backend := NewFileBackend()

	payload, err := encode([]map[string]string{{"id": "a1", "title": "<b>"}})
	require.NoError(t, err)
	require.NoError(t, backend.Write(context.Background(), ref, payload))

	raw, err := os.ReadFile(ref.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "\n"))
	assert.Contains(t, string(raw), "\n  {\n    \"id\": \"a1\"")
	assert.Contains(t, string(raw), `"<b>"`)

	got, err := backend.Read(context.Background(), ref)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1","title":"<b>"}]`, string(got))

	entries, err := os.ReadDir(filepath.Dir(ref.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not remain")
}

func TestFileBackend_CrashBeforeRenameKeepsOriginal(t *testing.T) {
	ref := testRef(t, Array)
	require.NoError(t, os.WriteFile(ref.Path, []byte(`[{"id":"old"}]`), 0o644))

	backend := NewFileBackend()
	backend.fs = failingFS{renameErr: errors.New("power lost")}

	err := backend.Write(context.Background(), ref, []byte(`[{"id":"new"}]`))
	require.Error(t, err)
	assert.False(t, apperr.Is(err, apperr.ReadOnlyStorage))

	got, err := NewFileBackend().Read(context.Background(), ref)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"old"}]`, string(got))

	entries, err := os.ReadDir(filepath.Dir(ref.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_ReadOnlyFilesystem(t *testing.T) {
	ref := testRef(t, Array)
	backend := NewFileBackend()
	backend.fs = failingFS{writeErr: &fs.PathError{Op: "open", Path: ref.Path, Err: syscall.EROFS}}

	err := backend.Write(context.Background(), ref, []byte(`[]`))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ReadOnlyStorage))
}

func TestWriteBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "a.png")
	require.NoError(t, WriteBinary(path, []byte{0x89, 0x50}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50}, data)
}
