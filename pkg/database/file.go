package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileStorage struct {
	mu  sync.Mutex
	dir string
}

// NewFileStorage create a LocalStorage keeping one <key>.json file per item under dir
func NewFileStorage(dir string) (LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("建立儲存目錄[%s]失敗: %w", dir, err)
	}
	return &fileStorage{dir: dir}, nil
}

func (f *fileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileStorage) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read item[%s]: %w", key, err)
	}
	return data, true, nil
}

// SetItem write to a temp file then rename, a reader never sees a half-written item
func (f *fileStorage) SetItem(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for item[%s]: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write item[%s]: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync item[%s]: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close item[%s]: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename item[%s]: %w", key, err)
	}
	return nil
}

func (f *fileStorage) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove item[%s]: %w", key, err)
	}
	return nil
}

func (f *fileStorage) Close() error {
	return nil
}
