package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps objects on the local filesystem under Dir.
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *LocalStore) Store(_ context.Context, data []byte, folder string, kind ImageKind) (Object, error) {
	id := NewObjectID(folder, kind)
	full, ok := s.resolve(id)
	if !ok {
		return Object{}, fmt.Errorf("invalid object path %q", id)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	return Object{ID: id, URL: publicURL(s.BaseURL, id)}, nil
}

// Remove deletes the object. Unknown or out-of-tree ids report false.
func (s *LocalStore) Remove(_ context.Context, objectID string) (bool, error) {
	full, ok := s.resolve(objectID)
	if !ok {
		return false, nil
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove object: %w", err)
	}
	return true, nil
}

func (s *LocalStore) resolve(objectID string) (string, bool) {
	rel := filepath.FromSlash(objectID)
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(s.Dir, rel), true
}
