package keyring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one file per alias in a directory.
// Secrets are stored in plain text: tests and CCSWITCH_TEST_KEYRING_DIR only.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory path is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keyring directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// IsAvailable implements Store.
func (f *FileStore) IsAvailable() error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("%w: directory not accessible: %v", ErrKeyringUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory", ErrKeyringUnavailable)
	}
	return nil
}

// entryPath maps an alias to a file inside the store directory.
func (f *FileStore) entryPath(alias string) (string, error) {
	fullPath := filepath.Join(f.dir, fileName(alias))

	absDir, err := filepath.Abs(f.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid alias: path traversal detected")
	}
	return fullPath, nil
}

// fileName turns an alias into a safe file name. Aliases that look like
// paths, and internal keys containing '|', are hashed; other characters outside [A-Za-z0-9_-] become '_'.
func fileName(alias string) string {
	if strings.Contains(alias, "..") || strings.ContainsAny(alias, `/\|`) {
		h := sha256.Sum256([]byte(alias))
		return hex.EncodeToString(h[:])
	}

	result := make([]byte, len(alias))
	for i, c := range []byte(alias) {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_' || c == '-' {
			result[i] = c
		} else {
			result[i] = '_'
		}
	}
	return string(result)
}

// Set implements Store.
func (f *FileStore) Set(alias, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if alias == "" {
		return ErrSecretNotFound
	}
	path, err := f.entryPath(alias)
	if err != nil {
		return err
	}

	// #nosec G304 - path is built by entryPath inside the store directory
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}
	return nil
}

// Get implements Store.
func (f *FileStore) Get(alias string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if alias == "" {
		return "", ErrSecretNotFound
	}
	path, err := f.entryPath(alias)
	if err != nil {
		return "", err
	}

	// #nosec G304 - path is built by entryPath inside the store directory
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(data), nil
}

// Delete implements Store.
func (f *FileStore) Delete(alias string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if alias == "" {
		return nil
	}
	path, err := f.entryPath(alias)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return nil
}
