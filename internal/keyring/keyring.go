// Package keyring stores profile secrets in the OS credential store.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/xabinapal/ccswitch/internal/utils"
)

const (
	// ServicePrefix is the prefix used for keyring service names.
	// Each profile gets its own entry: "ccswitch - <alias>".
	ServicePrefix = "ccswitch"

	// TestKeyringEnvVar, when set to a directory, makes DefaultStore return a
	// file-backed store. Used by the integration tests only.
	TestKeyringEnvVar = "CCSWITCH_TEST_KEYRING_DIR"

	availabilityProbe = "__availability_check__"
)

var (
	// ErrKeyringUnavailable is returned when no secure keyring is available.
	ErrKeyringUnavailable = errors.New("secure keyring is not available on this system")
	// ErrSecretNotFound is returned when no secret is stored for an alias.
	ErrSecretNotFound = errors.New("secret not found in keyring")
	// ErrKeyringAccessDenied is returned when access to the keyring is denied.
	ErrKeyringAccessDenied = errors.New("access to keyring denied")
)

// Store is a secret storage backend keyed by profile alias.
type Store interface {
	// Set stores a secret for the given alias.
	Set(alias, secret string) error
	// Get retrieves the secret for the given alias.
	Get(alias string) (string, error)
	// Delete removes the secret for the given alias. Missing entries are not an error.
	Delete(alias string) error
	// IsAvailable checks if the backend can be used.
	IsAvailable() error
}

func serviceName(alias string) string {
	return ServicePrefix + " - " + alias
}

// DefaultStore returns the OS keyring, or a FileStore when
// CCSWITCH_TEST_KEYRING_DIR is set.
func DefaultStore() Store {
	if testDir := os.Getenv(TestKeyringEnvVar); testDir != "" {
		fileStore, err := NewFileStore(testDir)
		if err == nil {
			return fileStore
		}
	}
	return &osKeyring{}
}

// osKeyring implements Store on top of go-keyring.
type osKeyring struct{}

// IsAvailable probes the keyring with a lookup of a key that never exists.
func (k *osKeyring) IsAvailable() error {
	_, err := gokeyring.Get(serviceName(availabilityProbe), availabilityProbe)
	if err == nil || errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}

	errStr := err.Error()
	switch runtime.GOOS {
	case "linux":
		if utils.ContainsAny(errStr, "secret service", "dbus", "org.freedesktop.secrets") {
			return fmt.Errorf("%w: D-Bus secret service not available - install and start gnome-keyring, kwallet, or another secret service provider", ErrKeyringUnavailable)
		}
	case "darwin":
		if utils.ContainsAny(errStr, "keychain", "security") {
			return fmt.Errorf("%w: macOS Keychain not accessible", ErrKeyringUnavailable)
		}
	case "windows":
		if utils.ContainsAny(errStr, "credential", "wincred") {
			return fmt.Errorf("%w: Windows Credential Manager not accessible", ErrKeyringUnavailable)
		}
	}

	// Anything else: let the real operation report a better error.
	return nil
}

// Set implements Store.
func (k *osKeyring) Set(alias, secret string) error {
	if err := k.IsAvailable(); err != nil {
		return err
	}
	if alias == "" {
		return errors.New("alias cannot be empty")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	if err := gokeyring.Set(serviceName(alias), alias, secret); err != nil {
		return wrapKeyringError(err, "failed to store secret")
	}
	return nil
}

// Get implements Store.
func (k *osKeyring) Get(alias string) (string, error) {
	if err := k.IsAvailable(); err != nil {
		return "", err
	}
	if alias == "" {
		return "", errors.New("alias cannot be empty")
	}

	secret, err := gokeyring.Get(serviceName(alias), alias)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", wrapKeyringError(err, "failed to retrieve secret")
	}
	return secret, nil
}

// Delete implements Store.
func (k *osKeyring) Delete(alias string) error {
	if err := k.IsAvailable(); err != nil {
		return err
	}
	if alias == "" {
		return errors.New("alias cannot be empty")
	}

	err := gokeyring.Delete(serviceName(alias), alias)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return wrapKeyringError(err, "failed to delete secret")
	}
	return nil
}

// wrapKeyringError classifies a backend error into one of the sentinel errors.
func wrapKeyringError(err error, context string) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	if utils.ContainsAny(errStr, "denied", "permission", "not allowed", "unauthorized") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringAccessDenied, context, err)
	}
	if utils.ContainsAny(errStr, "not found", "no keyring", "unavailable", "secret service") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringUnavailable, context, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}
