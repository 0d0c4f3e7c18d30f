package notify

import "github.com/gen2brain/beeep"

// Backend delivers a notification to the desktop.
type Backend interface {
	// Notify sends an informational notification.
	Notify(title, message, iconPath string) error
	// Alert sends a notification that also plays a sound.
	Alert(title, message, iconPath string) error
}

// beeepBackend is the desktop backend.
type beeepBackend struct{}

func (beeepBackend) Notify(title, message, iconPath string) error {
	return beeep.Notify(title, message, iconPath)
}

func (beeepBackend) Alert(title, message, iconPath string) error {
	return beeep.Alert(title, message, iconPath)
}
