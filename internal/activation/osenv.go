package activation

import (
	"fmt"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// EnvStore persists user-level environment variables for new processes.
type EnvStore interface {
	Set(name, value string) error
	Delete(name string) error
	Describe() string
}

// OSEnvStrategy writes the credential to the OS user environment. It only
// applies on hosts whose shell has no startup file.
type OSEnvStrategy struct {
	store      EnvStore
	applicable bool
}

// NewOSEnvStrategy returns the strategy for the observed host.
func NewOSEnvStrategy(obs shell.Observation, home string, store EnvStore) *OSEnvStrategy {
	_, hasStartup := shell.StartupFile(shell.Detect(obs), obs, home)
	return &OSEnvStrategy{store: store, applicable: !hasStartup && store != nil}
}

// Name implements Strategy.
func (s *OSEnvStrategy) Name() string { return config.TargetOS }

// Target implements Strategy.
func (s *OSEnvStrategy) Target() string {
	if s.store == nil {
		return ""
	}
	return s.store.Describe()
}

// Apply implements Strategy.
func (s *OSEnvStrategy) Apply(p profile.Profile) error {
	if !s.applicable {
		return ErrNotApplicable
	}

	env := EnvFor(p)
	for _, v := range env.Set {
		if err := s.store.Set(v.Name, v.Value); err != nil {
			return fmt.Errorf("failed to set %s: %w", v.Name, err)
		}
	}
	for _, name := range env.Unset {
		if err := s.store.Delete(name); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}
