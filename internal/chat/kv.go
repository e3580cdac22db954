package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV is the durable local key-value store backing conversation persistence.
// Implementations are synchronous; durability is per device, with no
// cross-device sharing. Concurrent writers follow last-writer-wins.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// FileKV stores each key as one file under a directory
type FileKV struct {
	dir string
	mu  sync.RWMutex
}

// NewFileKV creates a file-backed store rooted at dir
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// keyPath maps a key to its file. Keys are sanitized so a hostile key
// cannot escape the store directory.
func (f *FileKV) keyPath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(f.dir, safe+".json")
}

// Get returns the stored value for key, or false when absent
func (f *FileKV) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set overwrites the value for key
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.WriteFile(f.keyPath(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Remove deletes the record for key. Removing an absent key is not an error.
func (f *FileKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

// MemKV is an in-memory KV for tests
type MemKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemKV creates an empty in-memory store
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
