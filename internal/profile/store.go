package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/xabinapal/ccswitch/internal/fsutil"
	"github.com/xabinapal/ccswitch/internal/keyring"
)

// Store is the profile list backed by a record file.
// Writes are last-writer-wins; there is no cross-process locking.
type Store struct {
	path    string
	active  *ActiveFile
	secrets keyring.Store
}

// NewStore returns a store for the record file at path. active may be nil,
// in which case Remove never clears a pointer. secrets selects the keyring
// backend; nil keeps secrets inline.
func NewStore(path string, active *ActiveFile, secrets keyring.Store) *Store {
	return &Store{
		path:    path,
		active:  active,
		secrets: secrets,
	}
}

// Path returns the record file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureInitialized creates an empty record file if none exists.
// It reports whether the file was created.
func (s *Store) EnsureInitialized() (bool, error) {
	if fsutil.Exists(s.path) {
		return false, nil
	}
	if err := fsutil.WriteFileAtomic(s.path, nil, 0600); err != nil {
		return false, fmt.Errorf("failed to create profile store: %w", err)
	}
	return true, nil
}

// List returns every stored profile in file order. Keyring-backed secrets
// are left as SecretRef; use Reveal to load them.
func (s *Store) List() ([]Profile, error) {
	profiles, _, err := readRecordFile(s.path)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Find returns the profile with the given alias with its secret loaded.
func (s *Store) Find(alias string) (Profile, bool, error) {
	profiles, err := s.List()
	if err != nil {
		return Profile{}, false, err
	}

	p, ok := lo.Find(profiles, func(p Profile) bool {
		return p.Alias == alias
	})
	if !ok {
		return Profile{}, false, nil
	}

	p, err = s.Reveal(p)
	if err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

// Reveal replaces a keyring reference with the stored secret.
func (s *Store) Reveal(p Profile) (Profile, error) {
	if !p.SecretInKeyring() {
		return p, nil
	}
	if s.secrets == nil {
		return p, fmt.Errorf("profile %q keeps its secret in the keyring but the keyring backend is disabled", p.Alias)
	}
	secret, err := s.secrets.Get(p.Alias)
	if err != nil {
		return p, fmt.Errorf("failed to read secret for %q: %w", p.Alias, err)
	}
	p.Secret = secret
	return p, nil
}

// Add appends p to the list. The file is left untouched on error.
func (s *Store) Add(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	profiles, data, err := readRecordFile(s.path)
	if err != nil {
		return err
	}
	if containsAlias(profiles, p.Alias) {
		return fmt.Errorf("%w: %s", ErrDuplicateAlias, p.Alias)
	}

	record, err := s.storeSecret(p)
	if err != nil {
		return err
	}

	line := formatRecord(record) + "\n"
	if len(data) > 0 && data[len(data)-1] != '\n' {
		line = "\n" + line
	}
	if err := appendLine(s.path, line); err != nil {
		s.dropSecret(record)
		return fmt.Errorf("failed to add profile: %w", err)
	}
	return nil
}

// Update replaces the stored profile with the same alias, keeping its position.
func (s *Store) Update(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	profiles, err := s.List()
	if err != nil {
		return err
	}
	_, idx, ok := lo.FindIndexOf(profiles, func(existing Profile) bool {
		return existing.Alias == p.Alias
	})
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlias, p.Alias)
	}

	record, err := s.storeSecret(p)
	if err != nil {
		return err
	}
	profiles[idx] = record

	if err := writeRecordFile(s.path, profiles); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// Remove deletes the profile with the given alias and returns it. cleared
// is true when the active pointer named the alias and was removed. A
// non-empty removed alias with a non-nil error means the list was rewritten
// but the pointer or keyring cleanup failed.
func (s *Store) Remove(alias string) (removed Profile, cleared bool, err error) {
	profiles, err := s.List()
	if err != nil {
		return Profile{}, false, err
	}

	removed, idx, ok := lo.FindIndexOf(profiles, func(p Profile) bool {
		return p.Alias == alias
	})
	if !ok {
		return Profile{}, false, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}

	remaining := append(profiles[:idx:idx], profiles[idx+1:]...)
	if err := writeRecordFile(s.path, remaining); err != nil {
		return Profile{}, false, fmt.Errorf("failed to remove profile: %w", err)
	}

	// The list is already rewritten; report every later failure together.
	var errs []error
	if s.active != nil {
		named, err := s.active.NamesAlias(alias)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("profile removed but the active profile could not be checked: %w", err))
		case named:
			if err := s.active.Clear(); err != nil {
				errs = append(errs, err)
			} else {
				cleared = true
			}
		}
	}

	if removed.SecretInKeyring() && s.secrets != nil {
		if err := s.secrets.Delete(alias); err != nil && !errors.Is(err, keyring.ErrSecretNotFound) {
			errs = append(errs, fmt.Errorf("profile removed but its keyring entry remains: %w", err))
		}
	}
	return removed, cleared, errors.Join(errs...)
}

// ImportResult lists what Import did per alias.
type ImportResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

// Import merges incoming profiles into the store in one rewrite. Existing
// aliases are skipped unless overwrite is set, in which case they are
// replaced in place.
func (s *Store) Import(incoming []Profile, overwrite bool) (ImportResult, error) {
	var result ImportResult

	seen := make(map[string]bool, len(incoming))
	for _, p := range incoming {
		if err := p.Validate(); err != nil {
			return result, fmt.Errorf("profile %q: %w", p.Alias, err)
		}
		if seen[p.Alias] {
			return result, fmt.Errorf("%w: %s appears more than once in the import", ErrDuplicateAlias, p.Alias)
		}
		seen[p.Alias] = true
	}

	profiles, err := s.List()
	if err != nil {
		return result, err
	}
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		index[p.Alias] = i
	}

	for _, p := range incoming {
		i, exists := index[p.Alias]
		if exists && !overwrite {
			result.Skipped = append(result.Skipped, p.Alias)
			continue
		}

		record, err := s.storeSecret(p)
		if err != nil {
			return ImportResult{}, err
		}
		if exists {
			profiles[i] = record
			result.Updated = append(result.Updated, p.Alias)
		} else {
			profiles = append(profiles, record)
			result.Added = append(result.Added, p.Alias)
		}
	}

	if len(result.Added)+len(result.Updated) == 0 {
		return result, nil
	}
	if err := writeRecordFile(s.path, profiles); err != nil {
		return ImportResult{}, fmt.Errorf("failed to write imported profiles: %w", err)
	}
	return result, nil
}

// storeSecret moves the secret to the keyring when that backend is enabled
// and returns the record to write.
func (s *Store) storeSecret(p Profile) (Profile, error) {
	if s.secrets == nil || p.SecretInKeyring() {
		return p, nil
	}
	if err := s.secrets.Set(p.Alias, p.Secret); err != nil {
		return p, fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	p.Secret = SecretRef
	return p, nil
}

func (s *Store) dropSecret(record Profile) {
	if s.secrets != nil && record.SecretInKeyring() {
		_ = s.secrets.Delete(record.Alias)
	}
}

func containsAlias(profiles []Profile, alias string) bool {
	return lo.SomeBy(profiles, func(p Profile) bool {
		return p.Alias == alias
	})
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	// #nosec G304 - path is the profile store path (controlled, from user config directory)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
