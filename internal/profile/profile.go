// Package profile owns the on-disk profile list and the active pointer.
// Profiles are stored one per line as alias|displayName|secret|baseUrl|kind.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xabinapal/ccswitch/internal/credential"
)

// SecretRef is written in place of the secret when it lives in the OS keyring.
const SecretRef = "@keyring"

var (
	// ErrDuplicateAlias is returned by Add when the alias is already stored.
	ErrDuplicateAlias = errors.New("profile alias already exists")
	// ErrUnknownAlias is returned when no profile has the requested alias.
	ErrUnknownAlias = errors.New("profile not found")
	// ErrMalformedRecord is carried by RecordError for unparseable lines.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidField is returned when a field cannot be stored in a record.
	ErrInvalidField = errors.New("invalid profile field")
)

// Profile is one named credential set.
type Profile struct {
	Alias       string          `json:"alias"`
	DisplayName string          `json:"name"`
	Secret      string          `json:"-"`
	BaseURL     string          `json:"base_url"`
	Kind        credential.Kind `json:"kind"`
}

// Validate checks that every field fits in a single record line.
func (p Profile) Validate() error {
	if p.Alias == "" {
		return fmt.Errorf("%w: alias cannot be empty", ErrInvalidField)
	}
	fields := map[string]string{
		"alias":    p.Alias,
		"name":     p.DisplayName,
		"secret":   p.Secret,
		"base URL": p.BaseURL,
	}
	for name, value := range fields {
		if strings.ContainsAny(value, "|\r\n") {
			return fmt.Errorf("%w: %s cannot contain '|' or line breaks", ErrInvalidField, name)
		}
	}
	if p.Kind != "" && !p.Kind.IsValid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidField, p.Kind)
	}
	return nil
}

// EffectiveKind returns the kind, defaulting to TOKEN.
func (p Profile) EffectiveKind() credential.Kind {
	if p.Kind == "" {
		return credential.KindToken
	}
	return p.Kind
}

// Name returns the display name, or the alias when none is set.
func (p Profile) Name() string {
	if p.DisplayName == "" {
		return p.Alias
	}
	return p.DisplayName
}

// SecretInKeyring reports whether the secret field is a keyring reference.
func (p Profile) SecretInKeyring() bool {
	return p.Secret == SecretRef
}
