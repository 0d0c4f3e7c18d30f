// Package notify sends desktop notifications when the active profile changes.
package notify

import (
	"fmt"

	"github.com/xabinapal/ccswitch/internal/config"
)

const appTitle = "ccswitch"

// Notifier reports activation outcomes.
type Notifier interface {
	// NotifySwitched reports that name is now active, with the surface that
	// received the credential.
	NotifySwitched(name, baseURL, target string) error
	// NotifyFailure reports that activating alias did not reach any surface.
	NotifyFailure(alias string, err error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend replaces the desktop backend.
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

type notifier struct {
	enabled bool
	backend Backend
}

// New returns a Notifier. When notifications are disabled every call is a no-op.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		enabled: cfg.Enabled,
		backend: beeepBackend{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *notifier) NotifySwitched(name, baseURL, target string) error {
	if !n.enabled {
		return nil
	}

	message := fmt.Sprintf("Switched to '%s'\n%s", name, baseURL)
	if target != "" {
		message += "\nWritten to " + target
	}
	return n.backend.Notify(appTitle+": Profile Switched", message, "")
}

func (n *notifier) NotifyFailure(alias string, err error) error {
	if !n.enabled {
		return nil
	}

	message := fmt.Sprintf("Could not activate '%s'.\nError: %v", alias, err)
	return n.backend.Alert(appTitle+": Switch Failed", message, "")
}
