package storage

import (
	"github.com/jonathan/sng-admin/internal/config"
)

// NewBackend selects the collection backend once for the process:
// the key-value store when a URL is configured, local files otherwise.
// The returned RedisKV is nil for the file backend.
func NewBackend(cfg config.StorageConfig) (Backend, *RedisKV, error) {
	files := NewFileBackend()
	if !cfg.UseKV() {
		return files, nil, nil
	}

	kv, err := NewRedisKV(cfg.KVURL)
	if err != nil {
		return nil, nil, err
	}
	return NewKVBackend(kv, files), kv, nil
}
