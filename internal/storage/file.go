package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonathan/sng-admin/internal/apperr"
)

// fileSystem is the subset of os used by FileBackend; tests swap it to
// simulate failures between the temporary write and the rename.
type fileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	MkdirAll(path string, perm fs.FileMode) error
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }
func (osFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (osFileSystem) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (osFileSystem) Remove(name string) error                     { return os.Remove(name) }
func (osFileSystem) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

// FileBackend stores each collection as a JSON file. Writes go to a
// uniquely named sibling and are renamed over the target, so readers never
// observe a partially written file.
type FileBackend struct {
	fs  fileSystem
	now func() time.Time
}

// NewFileBackend creates a backend over the real filesystem.
func NewFileBackend() *FileBackend {
	return &FileBackend{fs: osFileSystem{}, now: time.Now}
}

// Name implements Backend.
func (b *FileBackend) Name() string { return "file" }

// Read implements Backend.
func (b *FileBackend) Read(_ context.Context, ref Ref) (json.RawMessage, error) {
	data, err := b.fs.ReadFile(ref.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && ref.Fallback != nil {
			return ref.Fallback, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ref.Name, err)
	}
	return parsePayload(data, ref.Name, ref.Shape)
}

// Write implements Backend.
func (b *FileBackend) Write(_ context.Context, ref Ref, payload json.RawMessage) error {
	if err := b.fs.MkdirAll(filepath.Dir(ref.Path), 0o755); err != nil {
		return classifyWriteError(ref, err)
	}

	tempPath := fmt.Sprintf("%s.tmp-%d-%d", ref.Path, b.now().UnixNano(), rand.Intn(100000))
	if err := b.fs.WriteFile(tempPath, payload, 0o644); err != nil {
		return classifyWriteError(ref, err)
	}
	if err := b.fs.Rename(tempPath, ref.Path); err != nil {
		_ = b.fs.Remove(tempPath)
		return classifyWriteError(ref, err)
	}
	return nil
}

// WriteBinary writes data to path directly, mapping a read-only filesystem
// to ReadOnlyStorage.
func WriteBinary(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return classifyWriteError(Ref{Name: filepath.Base(path)}, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return classifyWriteError(Ref{Name: filepath.Base(path)}, err)
	}
	return nil
}

func classifyWriteError(ref Ref, err error) error {
	if errors.Is(err, syscall.EROFS) {
		return apperr.Wrap(apperr.ReadOnlyStorage, "filesystem is read-only", err)
	}
	return fmt.Errorf("failed to write %s: %w", ref.Name, err)
}
