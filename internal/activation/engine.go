// Package activation writes the active pointer and propagates the active
// credential to every surface Claude Code reads it from.
package activation

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xabinapal/ccswitch/internal/credential"
	"github.com/xabinapal/ccswitch/internal/log"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

var (
	// ErrActivePointerWriteFailed aborts an activation.
	ErrActivePointerWriteFailed = errors.New("failed to write active profile")
	// ErrSettingsFileWriteFailed makes the engine fall back to the next target.
	ErrSettingsFileWriteFailed = errors.New("failed to write settings file")
	// ErrShellConfigWriteFailed makes the engine fall back to the next target.
	ErrShellConfigWriteFailed = errors.New("failed to write shell startup file")
	// ErrNotApplicable is returned by a strategy that does not apply to this host.
	ErrNotApplicable = errors.New("target not applicable on this host")
	// ErrNoTargetApplied is returned when every strategy failed or was skipped.
	ErrNoTargetApplied = errors.New("no activation target succeeded")
)

// Strategy persists a profile's credential to one surface.
type Strategy interface {
	// Name is the target name used in configuration.
	Name() string
	// Target describes where the credential goes, such as a file path.
	Target() string
	// Apply writes the credential. ErrNotApplicable means "skip".
	Apply(p profile.Profile) error
}

// Options configures an Engine.
type Options struct {
	Active     *profile.ActiveFile
	Strategies []Strategy
	Env        Env
	Logger     *logrus.Entry
}

// Engine activates profiles.
type Engine struct {
	active     *profile.ActiveFile
	strategies []Strategy
	env        Env
	log        *logrus.Entry
}

// New creates an Engine. A nil Env uses the process environment.
func New(opts Options) *Engine {
	e := &Engine{
		active:     opts.Active,
		strategies: opts.Strategies,
		env:        opts.Env,
		log:        opts.Logger,
	}
	if e.env == nil {
		e.env = ProcessEnv{}
	}
	if e.log == nil {
		e.log = log.Discard()
	}
	return e
}

// Attempt records the outcome of one strategy.
type Attempt struct {
	Strategy string
	Target   string
	Err      error
}

// Skipped reports whether the strategy did not apply.
func (a Attempt) Skipped() bool {
	return errors.Is(a.Err, ErrNotApplicable)
}

// Result describes a completed activation.
type Result struct {
	Profile  profile.Profile
	Applied  string
	Target   string
	Attempts []Attempt
}

// FellBack reports whether a strategy before the applied one failed.
func (r *Result) FellBack() bool {
	for _, a := range r.Attempts {
		if a.Err != nil && !a.Skipped() {
			return true
		}
	}
	return false
}

// Status is the active pointer plus whether this process sees it.
type Status struct {
	Profile  profile.Profile
	IsActive bool
}

// Activate makes p the active profile.
//
// The pointer write is the only fatal step. Strategies run in order until
// one succeeds, and the process environment is updated regardless.
func (e *Engine) Activate(p profile.Profile) (*Result, error) {
	p.Kind = p.EffectiveKind()
	logger := e.log.WithFields(logrus.Fields{"alias": p.Alias, "kind": p.Kind})

	if err := e.active.Write(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrActivePointerWriteFailed, err)
	}
	logger.WithField("path", e.active.Path()).Debug("active pointer written")

	result := &Result{Profile: p}
	var lastErr error
	for _, s := range e.strategies {
		attempt := Attempt{Strategy: s.Name(), Target: s.Target()}
		attempt.Err = s.Apply(p)
		result.Attempts = append(result.Attempts, attempt)

		entry := logger.WithFields(logrus.Fields{"target": attempt.Strategy, "location": attempt.Target})
		if attempt.Err == nil {
			entry.Debug("credential propagated")
			result.Applied = attempt.Strategy
			result.Target = attempt.Target
			break
		}
		if attempt.Skipped() {
			entry.Debug("target skipped")
			continue
		}
		entry.WithError(attempt.Err).Warn("target failed, falling back")
		lastErr = attempt.Err
	}

	e.updateProcessEnv(p, logger)

	if result.Applied == "" {
		if lastErr != nil {
			return result, fmt.Errorf("%w: %w", ErrNoTargetApplied, lastErr)
		}
		return result, ErrNoTargetApplied
	}
	return result, nil
}

func (e *Engine) updateProcessEnv(p profile.Profile, logger *logrus.Entry) {
	for _, key := range []string{credential.EnvAuthToken, credential.EnvAPIKey} {
		if err := e.env.Unsetenv(key); err != nil {
			logger.WithError(err).WithField("var", key).Warn("failed to unset variable")
		}
	}
	for _, v := range EnvFor(p).Set {
		if err := e.env.Setenv(v.Name, v.Value); err != nil {
			logger.WithError(err).WithField("var", v.Name).Warn("failed to set variable")
		}
	}
}

// Current returns the active pointer, or nil when no profile is active.
func (e *Engine) Current() (*Status, error) {
	p, err := e.active.Read()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	kind := p.EffectiveKind()
	live := e.env.Getenv(kind.EnvVar()) == p.Secret &&
		e.env.Getenv(credential.EnvBaseURL) == p.BaseURL
	return &Status{Profile: *p, IsActive: live}, nil
}

// EnvFor returns the assignments that present p to Claude Code.
func EnvFor(p profile.Profile) shell.Env {
	kind := p.EffectiveKind()
	return shell.Env{
		Set: []shell.Var{
			{Name: kind.EnvVar(), Value: p.Secret},
			{Name: credential.EnvBaseURL, Value: p.BaseURL},
		},
		Unset: []string{kind.OtherEnvVar()},
	}
}
