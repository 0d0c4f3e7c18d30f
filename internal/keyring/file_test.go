package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.IsAvailable())

	require.NoError(t, store.Set("kimi", "sk-xxx"))
	secret, err := store.Get("kimi")
	require.NoError(t, err)
	assert.Equal(t, "sk-xxx", secret)

	// Overwrite keeps the latest value.
	require.NoError(t, store.Set("kimi", "sk-yyy"))
	secret, err = store.Get("kimi")
	require.NoError(t, err)
	assert.Equal(t, "sk-yyy", secret)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, store.Delete("kimi"))
	_, err = store.Get("kimi")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	assert.NoError(t, store.Delete("missing"))
}

func TestFileStoreEmptyDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStoreUnavailable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	assert.ErrorIs(t, store.IsAvailable(), ErrKeyringUnavailable)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"kimi", "kimi"},
		{"my-profile_1", "my-profile_1"},
		{"with.dot", "with_dot"},
		{"月之暗面", "____________"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fileName(tt.alias), tt.alias)
	}

	assert.Len(t, fileName("|active"), 64)

	hashed := fileName("../etc/passwd")
	assert.Len(t, hashed, 64)
	assert.NotContains(t, hashed, "/")
}

func TestFileStoreTraversalStaysInside(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("../escape", "secret"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape"))
	assert.True(t, os.IsNotExist(err))
}
