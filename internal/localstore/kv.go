// Package localstore is the demo-mode persistence layer: a small
// file-backed key-value store standing in for the browser's local storage,
// plus the transaction-list adapter on top of it.
package localstore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV stores one JSON document per key, as <dir>/<key>.json.
type KV struct {
	mu  sync.Mutex
	dir string
}

func NewKV(dir string) *KV {
	return &KV{dir: dir}
}

// Get returns the stored value for key, or ok=false when the key is absent
// or unreadable.
func (kv *KV) Get(key string) ([]byte, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	data, err := os.ReadFile(kv.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set overwrites the value stored under key.
func (kv *KV) Set(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if err := os.MkdirAll(kv.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(kv.path(key), value, 0644)
}

func (kv *KV) path(key string) string {
	// Keys are fixed constants, but keep path traversal out anyway.
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(kv.dir, key+".json")
}
