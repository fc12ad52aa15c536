// Package jsonfile implements kv.KV on a single JSON document on disk.
// It is the default storage backend: human-readable, dependency-free, and
// atomic via tmp+rename writes.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/colonyops/taskly/internal/core/kv"
)

// storeFile is the root JSON structure stored on disk.
type storeFile struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

// KVStore implements kv.KV using a JSON file for persistence.
type KVStore struct {
	path string
	mu   sync.RWMutex
}

var _ kv.KV = (*KVStore)(nil)

// New creates a JSON file KV store at the given path.
// The file is created lazily on the first write.
func New(path string) *KVStore {
	return &KVStore{path: path}
}

// Get retrieves and deserializes a value by key.
// Returns kv.ErrNotFound if the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	raw, ok := file.Entries[key]
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set stores a value under key, overwriting any previous value.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	if file.Entries == nil {
		file.Entries = map[string]json.RawMessage{}
	}
	file.Entries[key] = raw

	return s.save(file)
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := file.Entries[key]; !ok {
		return nil
	}
	delete(file.Entries, key)

	return s.save(file)
}

// Has returns whether a key exists.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return false, err
	}

	_, ok := file.Entries[key]
	return ok, nil
}

// ListKeys returns all keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(file.Entries))
	for k := range file.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

// load reads the store file from disk.
// Returns an empty store if the file doesn't exist.
func (s *KVStore) load() (storeFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return storeFile{}, nil
		}
		return storeFile{}, fmt.Errorf("read store file: %w", err)
	}

	if len(data) == 0 {
		return storeFile{}, nil
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return storeFile{}, fmt.Errorf("parse store file: %w", err)
	}

	return file, nil
}

// save writes the store file to disk atomically.
func (s *KVStore) save(file storeFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	return os.Rename(tmp, s.path)
}
