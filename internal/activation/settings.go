package activation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/credential"
	"github.com/xabinapal/ccswitch/internal/fsutil"
	"github.com/xabinapal/ccswitch/internal/log"
	"github.com/xabinapal/ccswitch/internal/profile"
)

// Keys written into a synthesized settings document.
const (
	envMaxOutputTokens            = "CLAUDE_CODE_MAX_OUTPUT_TOKENS"
	envDisableNonessentialTraffic = "CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC"
)

// SettingsDefaults seed a settings file that is missing or unreadable.
type SettingsDefaults struct {
	MaxOutputTokens            string
	DisableNonessentialTraffic bool
}

// SettingsStrategy merges the credential into Claude Code's settings.json.
type SettingsStrategy struct {
	path     string
	defaults SettingsDefaults
	log      *logrus.Entry
}

// NewSettingsStrategy returns a strategy writing to path.
func NewSettingsStrategy(path string, defaults SettingsDefaults, logger *logrus.Entry) *SettingsStrategy {
	if logger == nil {
		logger = log.Discard()
	}
	return &SettingsStrategy{path: path, defaults: defaults, log: logger}
}

// Name implements Strategy.
func (s *SettingsStrategy) Name() string { return config.TargetSettings }

// Target implements Strategy.
func (s *SettingsStrategy) Target() string { return s.path }

// Apply implements Strategy. Unrelated keys of an existing document are kept.
func (s *SettingsStrategy) Apply(p profile.Profile) error {
	doc, perm, err := s.load()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsFileWriteFailed, err)
	}

	env, ok := doc["env"].(map[string]any)
	if !ok {
		env = make(map[string]any)
		doc["env"] = env
	}
	kind := p.EffectiveKind()
	env[kind.EnvVar()] = p.Secret
	delete(env, kind.OtherEnvVar())
	env[credential.EnvBaseURL] = p.BaseURL

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsFileWriteFailed, err)
	}

	if err := fsutil.WriteFileAtomic(s.path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsFileWriteFailed, err)
	}
	return nil
}

// load returns the current document, or the default document when the file
// is missing or not a JSON object. An unparseable file is copied to
// <path>.bak before it is replaced.
func (s *SettingsStrategy) load() (map[string]any, os.FileMode, error) {
	perm := os.FileMode(0600)

	// #nosec G304 - path is Claude Code's settings file, from configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.defaultDocument(), perm, nil
		}
		return nil, perm, err
	}
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	doc, err := decodeSettings(data)
	if err != nil || doc == nil {
		s.log.WithField("path", s.path).WithError(err).Warn("settings file is not a JSON object, replacing it with defaults")
		if err := fsutil.WriteFileAtomic(s.path+".bak", data, perm); err != nil {
			return nil, perm, fmt.Errorf("failed to back up unreadable settings file: %w", err)
		}
		return s.defaultDocument(), perm, nil
	}
	return doc, perm, nil
}

// decodeSettings parses a settings document, keeping numbers as json.Number
// so large integers survive the rewrite unchanged.
func decodeSettings(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level JSON value")
	}
	return doc, nil
}

func (s *SettingsStrategy) defaultDocument() map[string]any {
	env := make(map[string]any)
	if s.defaults.MaxOutputTokens != "" {
		env[envMaxOutputTokens] = s.defaults.MaxOutputTokens
	}
	if s.defaults.DisableNonessentialTraffic {
		env[envDisableNonessentialTraffic] = "1"
	}
	return map[string]any{
		"env": env,
		"permissions": map[string]any{
			"allow": []any{},
			"deny":  []any{},
		},
	}
}
