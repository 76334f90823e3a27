package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps every key in a single human-readable JSON object on
// disk. The whole file is loaded at open and rewritten on every change;
// the state held here is tiny (a session record and one notification).
type FileStore struct {
	data map[string]string
	path string
	mu   sync.Mutex
}

// OpenFileStore loads the store at path, creating the parent directory
// with 0700 if needed. A missing file is an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("filestore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filestore: mkdir: %w", err)
	}

	fs := &FileStore{path: path, data: make(map[string]string)}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("filestore: read file: %w", err)
	}
	if len(b) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(b, &fs.data); err != nil {
		return nil, fmt.Errorf("filestore: json unmarshal %s: %w", path, err)
	}
	return fs, nil
}

// Path returns the file backing the store.
func (f *FileStore) Path() string { return f.path }

// Get retrieves a value by key.
func (f *FileStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return []byte(v), nil
}

// Put stores value under key and flushes the file.
func (f *FileStore) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = string(value)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key and flushes the file. Missing keys are not an error.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return err
	}
	return nil
}

// List returns all keys in sorted order.
func (f *FileStore) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; every change is already on disk.
func (f *FileStore) Close() error { return nil }

// flush writes the map to a temp file and renames it over the target.
// Caller must hold f.mu.
func (f *FileStore) flush() error {
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".todokit-*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: chmod: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}
