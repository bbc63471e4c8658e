package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type localStore struct {
	dir string
}

// NewLocal stores objects as plain files under dir.
func NewLocal(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) path(objectName string) string {
	return filepath.Join(s.dir, filepath.Base(objectName))
}

func (s *localStore) Put(_ context.Context, objectName string, data []byte, _ string) error {
	if err := os.WriteFile(s.path(objectName), data, 0o644); err != nil {
		return fmt.Errorf("write object %q: %w", objectName, err)
	}
	return nil
}

func (s *localStore) Get(_ context.Context, objectName string) ([]byte, error) {
	data, err := os.ReadFile(s.path(objectName))
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", objectName, err)
	}
	return data, nil
}

func (s *localStore) Remove(_ context.Context, objectName string) error {
	err := os.Remove(s.path(objectName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *localStore) RemoveAll(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
