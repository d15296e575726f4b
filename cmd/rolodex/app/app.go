// Package app provides the application context and dependency
// management for the rolodex CLI: configuration, logging, and the
// command tree wiring live here so commands stay thin.
package app

import (
	"github.com/rs/zerolog"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/errors"
)

// App represents the rolodex application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapIO("load", "config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// reporter returns the diagnostics sink engines report through: every
// record lands in the structured log at its level.
func (a *App) reporter() diag.Reporter {
	logger := a.logger
	return diag.ReporterFunc(func(rec diag.Record) {
		var event *zerolog.Event
		switch rec.Level {
		case diag.LevelError:
			event = logger.Error()
		case diag.LevelWarning:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		for key, value := range rec.Context {
			event = event.Interface(key, value)
		}
		event.Msg(rec.Message)
	})
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
