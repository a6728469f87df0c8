package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every collection in a single JSON document on disk,
// {"collection": [record, ...]}. Writes rewrite the file atomically.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string][]Record
}

// OpenFileStore loads path, starting empty when the file does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: map[string][]Record{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if s.data == nil {
		s.data = map[string][]Record{}
	}
	return s, nil
}

func (s *FileStore) List(_ context.Context, collection string, filter map[string]string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.data[collection]))
	for _, rec := range s.data[collection] {
		if rec.Matches(filter) {
			out = append(out, rec.clone())
		}
	}
	return out, nil
}

func (s *FileStore) Get(_ context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(collection, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return s.data[collection][i].clone(), nil
}

func (s *FileStore) Create(_ context.Context, collection string, rec Record) (Record, error) {
	rec, id, err := prepareCreate(rec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(collection, id) >= 0 {
		return nil, ErrConflict
	}
	s.data[collection] = append(s.data[collection], rec)
	if err := s.flush(); err != nil {
		s.data[collection] = s.data[collection][:len(s.data[collection])-1]
		return nil, err
	}
	return rec.clone(), nil
}

func (s *FileStore) Replace(_ context.Context, collection, id string, rec Record) (Record, error) {
	rec, err := prepareReplace(id, rec)
	if err != nil {
		return nil, err
	}
	return s.update(collection, id, func(Record) Record { return rec })
}

func (s *FileStore) Patch(_ context.Context, collection, id string, patch Record) (Record, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: body must be an object", ErrInvalidRecord)
	}
	return s.update(collection, id, func(cur Record) Record { return merge(cur, patch) })
}

func (s *FileStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, id)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.data[collection]
	next := make([]Record, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.data[collection] = next
	if err := s.flush(); err != nil {
		s.data[collection] = prev
		return err
	}
	return nil
}

func (s *FileStore) update(collection, id string, fn func(Record) Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	prev := s.data[collection][i]
	next := fn(prev)
	s.data[collection][i] = next
	if err := s.flush(); err != nil {
		s.data[collection][i] = prev
		return nil, err
	}
	return next.clone(), nil
}

// indexOf must be called with s.mu held.
func (s *FileStore) indexOf(collection, id string) int {
	for i, rec := range s.data[collection] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

// flush must be called with s.mu held for writing.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
