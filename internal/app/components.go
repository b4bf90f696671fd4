package app

import (
	"go.trai.ch/daybook/internal/adapters/notify" //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/core/ports"
)

// Components contains the components of the application.
type Components struct {
	App      *App
	Logger   ports.Logger
	Notifier *notify.Printer
}

// NewComponents returns the components and subscribes notifier to the
// notification queue of app.
func NewComponents(app *App, log ports.Logger, notifier *notify.Printer) *Components {
	if notifier != nil {
		app.SubscribeToasts(notifier.Handle)
	}
	return &Components{
		App:      app,
		Logger:   log,
		Notifier: notifier,
	}
}
