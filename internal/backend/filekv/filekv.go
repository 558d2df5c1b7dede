// Package filekv implements repository.KeyValue on a single JSON object file
// mapping each key to its raw value.
package filekv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"tasklist/internal/logging"
)

// Store is a file-backed key-value slot. Writes replace the file atomically.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

// Open returns a Store for path, creating its parent directory.
// The file itself is created on first write.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the storage file path.
func (s *Store) Path() string {
	return s.path
}

// Get implements repository.KeyValue.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Set implements repository.KeyValue.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany implements repository.KeyValue. All keys land in one atomic
// rewrite of the file. A value that is not valid JSON is stored as a JSON
// string so the file stays readable.
func (s *Store) SetMany(ctx context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read()
	if err != nil {
		return err
	}

	for key, value := range values {
		if json.Valid(value) {
			stored[key] = json.RawMessage(bytes.Clone(value))
			continue
		}
		quoted, err := json.Marshal(string(value))
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		stored[key] = quoted
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

// Close implements repository.KeyValue.
func (s *Store) Close() error {
	return nil
}

// read loads the storage object. A missing file is empty; an unparsable
// file is logged and treated as empty so the next write replaces it.
func (s *Store) read() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("ignoring unreadable storage file", "path", s.path, "err", err)
		return make(map[string]json.RawMessage), nil
	}
	return values, nil
}

func writeFileAtomic(path string, content []byte) error {
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return fmt.Errorf("write storage tmp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename storage: %w", err)
	}

	return nil
}
