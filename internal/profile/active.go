package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xabinapal/ccswitch/internal/fsutil"
	"github.com/xabinapal/ccswitch/internal/keyring"
)

// activeSecretKey is the keyring entry holding the snapshot's secret. It
// contains '|' so it can never be a profile alias.
const activeSecretKey = "|active"

// ActiveFile is the single-line active pointer: a snapshot of the
// profile that was last activated.
type ActiveFile struct {
	path    string
	secrets keyring.Store
}

// NewActiveFile returns the pointer at path. When secrets is non-nil the
// snapshot stores SecretRef and keeps its secret in a keyring entry of its
// own, so later edits of the profile do not change the snapshot.
func NewActiveFile(path string, secrets keyring.Store) *ActiveFile {
	return &ActiveFile{path: path, secrets: secrets}
}

// Path returns the pointer file path.
func (a *ActiveFile) Path() string {
	return a.path
}

// Read returns the snapshot, or nil when there is no active profile.
func (a *ActiveFile) Read() (*Profile, error) {
	p, err := a.readRaw()
	if err != nil || p == nil {
		return nil, err
	}

	if p.SecretInKeyring() {
		if a.secrets == nil {
			return nil, fmt.Errorf("active profile %q keeps its secret in the keyring but the keyring backend is disabled", p.Alias)
		}
		secret, err := a.secrets.Get(activeSecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret for active profile %q: %w", p.Alias, err)
		}
		p.Secret = secret
	}
	return p, nil
}

// Alias returns the alias named by the pointer without touching the keyring.
func (a *ActiveFile) Alias() (string, bool, error) {
	p, err := a.readRaw()
	if err != nil || p == nil {
		return "", false, err
	}
	return p.Alias, true, nil
}

// NamesAlias reports whether the pointer names alias. A malformed pointer
// is matched on its first field so it can still be cleared.
func (a *ActiveFile) NamesAlias(alias string) (bool, error) {
	line, err := a.readLine()
	if err != nil || line == "" {
		return false, err
	}
	p, err := a.parse(line)
	if err == nil {
		return p.Alias == alias, nil
	}
	if errors.Is(err, ErrMalformedRecord) {
		first, _, _ := strings.Cut(line, "|")
		return first == alias, nil
	}
	return false, err
}

func (a *ActiveFile) readRaw() (*Profile, error) {
	line, err := a.readLine()
	if err != nil || line == "" {
		return nil, err
	}
	return a.parse(line)
}

// readLine returns the first line of the pointer, or "" when there is none.
func (a *ActiveFile) readLine() (string, error) {
	// #nosec G304 - path is the active pointer path (controlled, from user config directory)
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active profile: %w", err)
	}

	line := strings.TrimSpace(string(data))
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return line, nil
}

func (a *ActiveFile) parse(line string) (*Profile, error) {
	p, err := parseRecord(line, 1)
	if err != nil {
		var recErr *RecordError
		if errors.As(err, &recErr) {
			recErr.Path = a.path
		}
		return nil, err
	}
	return &p, nil
}

// Write replaces the snapshot with p.
func (a *ActiveFile) Write(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if a.secrets != nil {
		secret := p.Secret
		if p.SecretInKeyring() {
			s, err := a.secrets.Get(p.Alias)
			if err != nil {
				return fmt.Errorf("failed to read secret for %q from keyring: %w", p.Alias, err)
			}
			secret = s
		}
		if err := a.secrets.Set(activeSecretKey, secret); err != nil {
			return fmt.Errorf("failed to store secret in keyring: %w", err)
		}
		p.Secret = SecretRef
	}
	return fsutil.WriteFileAtomic(a.path, []byte(formatRecord(p)+"\n"), 0600)
}

// Clear removes the pointer and its keyring entry. A missing pointer is
// not an error.
func (a *ActiveFile) Clear() error {
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear active profile: %w", err)
	}
	if a.secrets != nil {
		if err := a.secrets.Delete(activeSecretKey); err != nil && !errors.Is(err, keyring.ErrSecretNotFound) {
			return fmt.Errorf("failed to clear active profile secret: %w", err)
		}
	}
	return nil
}
