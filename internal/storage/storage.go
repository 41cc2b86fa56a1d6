// Package storage is the client's persistent key-value store: a small JSON
// file in the state directory that survives restarts, with an in-memory
// variant for tests.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is a string key-value store. Apply commits all operations together.
type KV interface {
	Get(key string) (string, bool)
	Apply(ops ...Op) error
}

// Op is a single write: a set, or a removal when Delete is true.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// Set returns an operation storing value under key.
func Set(key, value string) Op { return Op{Key: key, Value: value} }

// Remove returns an operation deleting key.
func Remove(key string) Op { return Op{Key: key, Delete: true} }

func apply(data map[string]string, ops []Op) {
	for _, op := range ops {
		if op.Delete {
			delete(data, op.Key)
		} else {
			data[op.Key] = op.Value
		}
	}
}

// Memory is a KV held in memory only.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Apply implements KV.
func (m *Memory) Apply(ops ...Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(m.data, ops)
	return nil
}

// File is a KV persisted as a JSON object in a single file. Reads are served
// from memory; every Apply rewrites the file atomically.
type File struct {
	path    string
	corrupt bool

	mu   sync.RWMutex
	data map[string]string
}

// OpenFile loads the store at path. A missing file is an empty store. A file
// that is not a JSON object is also treated as empty (see Corrupt) and is
// replaced on the next write.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("storage.OpenFile: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil || f.data == nil {
		f.data = make(map[string]string)
		f.corrupt = true
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Corrupt reports whether the file existed but could not be decoded.
func (f *File) Corrupt() bool { return f.corrupt }

// Get implements KV.
func (f *File) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

// Apply implements KV. A failed write leaves the store unchanged.
func (f *File) Apply(ops ...Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.data)+len(ops))
	for k, v := range f.data {
		next[k] = v
	}
	apply(next, ops)
	if err := writeAtomic(f.path, next); err != nil {
		return fmt.Errorf("storage.Apply: %w", err)
	}
	f.data = next
	f.corrupt = false
	return nil
}

func writeAtomic(path string, data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
