package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"watch_earn_service/pkg/config"
	"watch_earn_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

// storageContract 每個 LocalStorage 實作都要通過的行為
func storageContract(t *testing.T, s LocalStorage) {
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report ok=false")

	require.NoError(t, s.SetItem(ctx, "users", []byte(`[{"id":"1"}]`)))
	v, ok, err := s.GetItem(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(v))

	require.NoError(t, s.SetItem(ctx, "users", []byte(`[]`)))
	v, _, err = s.GetItem(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v), "second write replaces the first")

	require.NoError(t, s.RemoveItem(ctx, "users"))
	_, ok, err = s.GetItem(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.RemoveItem(ctx, "users"), "removing an absent key is not an error")
	assert.NoError(t, s.Close())
}

func TestMemoryStorage(t *testing.T) {
	storageContract(t, NewMemoryStorage())
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	buf := []byte("abc")
	require.NoError(t, s.SetItem(ctx, "k", buf))
	buf[0] = 'x'

	v, _, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	storageContract(t, s)
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "videos", []byte(`[1,2]`)))

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := reopened.GetItem(ctx, "videos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temp files left behind")
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	s, err := OpenStorage(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = OpenStorage(ctx, config.StorageConfig{Driver: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = OpenStorage(ctx, config.StorageConfig{Driver: "floppy"})
	assert.Error(t, err)
}

func TestOpenPublisher(t *testing.T) {
	p, err := OpenPublisher(config.EventConfig{Driver: "none"})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), "k", []byte("v")))
	assert.NoError(t, p.Close())

	_, err = OpenPublisher(config.EventConfig{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}
