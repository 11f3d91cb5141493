package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps tokens in a JSON file readable only by the current user.
// Every write rewrites the whole file through a temp file and rename.
type FileStore struct {
	path string

	mu     sync.Mutex
	tokens map[string]string
}

// OpenFile loads the store at path. A missing file is an empty store; an
// unreadable or corrupt one is reported but still yields an empty store so
// the caller can continue anonymously.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, tokens: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("tokenstore.OpenFile: %w", err)
	}
	if err := json.Unmarshal(data, &s.tokens); err != nil {
		s.tokens = make(map[string]string)
		return s, fmt.Errorf("tokenstore.OpenFile: decode %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[name]
	return tok, ok && tok != ""
}

func (s *FileStore) Set(name, token string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = token
	return s.flush()
}

func (s *FileStore) Clear(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[name]; !ok {
		return nil
	}
	delete(s.tokens, name)
	return s.flush()
}

// flush writes the current tokens. Caller holds mu.
func (s *FileStore) flush() error {
	if len(s.tokens) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("tokenstore: remove: %w", err)
		}
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: create dir: %w", err)
	}
	data, err := json.Marshal(s.tokens)
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("tokenstore: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("tokenstore: rename: %w", err)
	}
	return nil
}
