package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/xabinapal/ccswitch/internal/credential"
)

// Format is an export/import file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for unsupported export formats.
var ErrUnknownFormat = errors.New("unknown export format")

// FormatFromPath picks a format from the file extension. Unknown or
// missing extensions select YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatTOML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (use yaml, toml or json)", ErrUnknownFormat, s)
	}
}

type exportDocument struct {
	Profiles []exportProfile `yaml:"profiles" toml:"profiles" json:"profiles"`
}

type exportProfile struct {
	Alias   string `yaml:"alias" toml:"alias" json:"alias"`
	Name    string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Secret  string `yaml:"secret" toml:"secret" json:"secret"`
	BaseURL string `yaml:"base_url" toml:"base_url" json:"base_url"`
	Kind    string `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
}

// Export writes profiles to w. Secrets are written as given, so callers
// must Reveal keyring-backed profiles first.
func Export(w io.Writer, format Format, profiles []Profile) error {
	doc := exportDocument{Profiles: make([]exportProfile, 0, len(profiles))}
	for _, p := range profiles {
		doc.Profiles = append(doc.Profiles, exportProfile{
			Alias:   p.Alias,
			Name:    p.DisplayName,
			Secret:  p.Secret,
			BaseURL: p.BaseURL,
			Kind:    string(p.EffectiveKind()),
		})
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Import reads profiles written by Export. Missing kinds are resolved from
// the base URL.
func Import(r io.Reader, format Format) ([]Profile, error) {
	var doc exportDocument

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	profiles := make([]Profile, 0, len(doc.Profiles))
	for i, ep := range doc.Profiles {
		kind := credential.Resolve(ep.BaseURL, "")
		if ep.Kind != "" {
			k, err := credential.ParseKind(ep.Kind)
			if err != nil {
				return nil, fmt.Errorf("profile %d (%s): %w", i+1, ep.Alias, err)
			}
			kind = k
		}

		p := Profile{
			Alias:       ep.Alias,
			DisplayName: ep.Name,
			Secret:      ep.Secret,
			BaseURL:     ep.BaseURL,
			Kind:        kind,
		}
		if p.DisplayName == "" {
			p.DisplayName = p.Alias
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
