package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/xabinapal/ccswitch/internal/fsutil"
)

// Activation target names, in their default order.
const (
	TargetSettings = "settings"
	TargetShell    = "shell"
	TargetOS       = "os"
	TargetManual   = "manual"
)

// Secret backends.
const (
	SecretsBackendFile    = "file"
	SecretsBackendKeyring = "keyring"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SettingsDefaults are written into a freshly synthesized settings file.
type SettingsDefaults struct {
	// MaxOutputTokens becomes env.CLAUDE_CODE_MAX_OUTPUT_TOKENS.
	MaxOutputTokens string `yaml:"max_output_tokens,omitempty" json:"max_output_tokens,omitempty"`
	// DisableNonessentialTraffic becomes env.CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC.
	DisableNonessentialTraffic *bool `yaml:"disable_nonessential_traffic,omitempty" json:"disable_nonessential_traffic,omitempty"`
}

// SecretsConfig selects where profile secrets live.
type SecretsConfig struct {
	// Backend is "file" (inline in the profile list) or "keyring".
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled sends a notification after a successful switch.
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is the logrus level name (debug, info, warn, error).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	// File redirects logs from stderr to a file.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
	// JSON enables JSON-formatted logging.
	JSON bool `yaml:"json,omitempty" json:"json,omitempty"`
}

// Config represents the ccswitch configuration.
type Config struct {
	// SettingsFile is Claude Code's settings.json. Empty means the default location.
	SettingsFile string `yaml:"settings_file,omitempty" json:"settings_file,omitempty"`
	// Targets is the ordered list of activation targets to try.
	Targets []string `yaml:"targets,omitempty" json:"targets,omitempty"`
	// SettingsDefaults seeds a newly created settings file.
	SettingsDefaults SettingsDefaults `yaml:"settings_defaults,omitempty" json:"settings_defaults,omitempty"`
	// Secrets selects the secret backend.
	Secrets SecretsConfig `yaml:"secrets,omitempty" json:"secrets,omitempty"`
	// Notifications holds notification settings.
	Notifications NotificationConfig `yaml:"notifications,omitempty" json:"notifications,omitempty"`
	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log,omitempty" json:"log,omitempty"`

	filePath string `yaml:"-"`
}

// Default returns a new Config with default values.
func Default() *Config {
	disableTraffic := true
	return &Config{
		Targets: []string{TargetSettings, TargetShell, TargetOS, TargetManual},
		SettingsDefaults: SettingsDefaults{
			MaxOutputTokens:            "32000",
			DisableNonessentialTraffic: &disableTraffic,
		},
		Secrets: SecretsConfig{
			Backend: SecretsBackendFile,
		},
		Log: LogConfig{
			Level: "warn",
		},
		filePath: GetPaths().ConfigFile,
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(GetPaths().ConfigFile)
}

// LoadFrom loads the configuration from a specific path. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	cfg.filePath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fsutil.WriteFileAtomic(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks enum-like fields.
func (c *Config) Validate() error {
	for _, target := range c.Targets {
		switch target {
		case TargetSettings, TargetShell, TargetOS, TargetManual:
		default:
			return fmt.Errorf("%w: unknown target %q (use settings, shell, os or manual)", ErrInvalidConfig, target)
		}
	}
	switch c.Secrets.Backend {
	case "", SecretsBackendFile, SecretsBackendKeyring:
	default:
		return fmt.Errorf("%w: unknown secrets backend %q (use file or keyring)", ErrInvalidConfig, c.Secrets.Backend)
	}
	return nil
}

// ResolvedSettingsFile returns the settings file path with "~" expanded.
func (c *Config) ResolvedSettingsFile() string {
	if c.SettingsFile == "" {
		return DefaultSettingsFile()
	}
	return ExpandHome(c.SettingsFile)
}

// IsDisableNonessentialTraffic reports the effective traffic-reduction default.
func (c *Config) IsDisableNonessentialTraffic() bool {
	if c.SettingsDefaults.DisableNonessentialTraffic == nil {
		return true
	}
	return *c.SettingsDefaults.DisableNonessentialTraffic
}

// UsesKeyring reports whether secrets go to the OS keyring.
func (c *Config) UsesKeyring() bool {
	return c.Secrets.Backend == SecretsBackendKeyring
}

// FilePath returns the path where this config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
