package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.csv"), []byte("a,b\n1,2\n"), 0644))

	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	f, err := store.Open(context.Background(), "faq.csv")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestLocalStorageOpenMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "tidak-ada.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewLocalStorageValidatesPath(t *testing.T) {
	_, err := NewLocalStorage(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewLocalStorage(file)
	assert.Error(t, err)
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
