// Package app wires configuration, storage and transport into a runnable
// service. Bootstrap steps panic on failure; cmd/main.go calls them in order.
package app

import (
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/config"
	"github.com/adanyl0v/tasklist/internal/storage"
)

type App struct {
	logger zerolog.Logger
	cfg    *config.Config
	store  storage.Store
}

// New returns an app logging through the default logger until the
// configuration is read.
func New() *App {
	return &App{logger: newDefaultLogger()}
}
