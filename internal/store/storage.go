package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/photon/internal/shared"
)

// Storage is the durable key-value adapter behind a [Store].
//
// Read reports ok == false with a nil error when key has never been written.
type Storage interface {
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	Write(ctx context.Context, key string, data []byte) error
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: storage key %q", shared.ErrInvalidInput, key)
	}
	return nil
}

// FileStorage keeps one JSON file per key under a directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a [FileStorage] rooted at dir. The directory is created on first write.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: shared.ExpandHome(dir)}
}

// Path returns the file backing key.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Read(_ context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", shared.ErrStorageRead, err)
	}
	return data, true, nil
}

// Write replaces the file for key through a temp file and rename.
func (f *FileStorage) Write(_ context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create storage directory: %v", shared.ErrStorageWrite, err)
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}
	return nil
}

// MemoryStorage is an in-process [Storage] for tests and --storage memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: map[string][]byte{}}
}

func (m *MemoryStorage) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	data, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStorage) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	m.records[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}
