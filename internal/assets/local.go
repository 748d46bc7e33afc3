package assets

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jonathan/sng-admin/internal/storage"
)

// LocalBackend writes uploads into a directory served under a URL prefix.
type LocalBackend struct {
	dir    string
	prefix string
}

// NewLocalBackend creates a backend writing to dir; URLs start with prefix.
func NewLocalBackend(dir, prefix string) *LocalBackend {
	return &LocalBackend{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}
}

// Name implements Backend.
func (b *LocalBackend) Name() string { return "local" }

// Put implements Backend.
func (b *LocalBackend) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := storage.WriteBinary(filepath.Join(b.dir, name), data); err != nil {
		return "", err
	}
	return b.prefix + "/" + name, nil
}
