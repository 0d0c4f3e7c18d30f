// Package credential decides how a profile's secret is presented to Claude Code.
package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Environment variable names read by Claude Code.
const (
	// EnvAuthToken carries bearer-style credentials (Kind TOKEN).
	EnvAuthToken = "ANTHROPIC_AUTH_TOKEN"
	// EnvAPIKey carries API-key-style credentials (Kind KEY).
	EnvAPIKey = "ANTHROPIC_API_KEY"
	// EnvBaseURL carries the API endpoint.
	EnvBaseURL = "ANTHROPIC_BASE_URL"
)

// ErrUnknownKind is returned by ParseKind for literals other than key/k/token/t.
var ErrUnknownKind = errors.New("unknown credential kind")

// Kind is the presentation style of a secret.
type Kind string

const (
	// KindKey presents the secret as ANTHROPIC_API_KEY.
	KindKey Kind = "KEY"
	// KindToken presents the secret as ANTHROPIC_AUTH_TOKEN.
	KindToken Kind = "TOKEN"
)

// EnvVar returns the environment variable that carries a secret of this kind.
func (k Kind) EnvVar() string {
	if k == KindKey {
		return EnvAPIKey
	}
	return EnvAuthToken
}

// OtherEnvVar returns the credential variable that must be cleared when this
// kind is active.
func (k Kind) OtherEnvVar() string {
	if k == KindKey {
		return EnvAuthToken
	}
	return EnvAPIKey
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k == KindKey || k == KindToken
}

// parseOverride maps an override literal to a kind. ok is false for
// anything it does not recognize.
func parseOverride(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "key", "k":
		return KindKey, true
	case "token", "t":
		return KindToken, true
	default:
		return "", false
	}
}

// ParseKind parses a user-supplied kind literal strictly.
func ParseKind(s string) (Kind, error) {
	k, ok := parseOverride(s)
	if !ok {
		return "", fmt.Errorf("%w: %q (use key, k, token or t)", ErrUnknownKind, s)
	}
	return k, nil
}
