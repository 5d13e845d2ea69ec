// Package notify implements the notifier port.
package notify

import (
	"github.com/cockroachdb/errors"
	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows desktop notifications through beeep.
type DesktopNotifier struct{}

// NewDesktopNotifier creates a notifier that posts under appName.
func NewDesktopNotifier(appName string) *DesktopNotifier {
	if appName != "" {
		beeep.AppName = appName
	}
	return &DesktopNotifier{}
}

// Notify posts an informational notification.
func (d *DesktopNotifier) Notify(title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return errors.Wrap(err, "desktop notify")
	}
	return nil
}

// Alert posts a notification with a sound.
func (d *DesktopNotifier) Alert(title, message string) error {
	if err := beeep.Alert(title, message, ""); err != nil {
		return errors.Wrap(err, "desktop alert")
	}
	return nil
}
