// Package app assembles eventmgr's components into an fx application.
//
// The application provides, in dependency order:
//
//	*config.Config         loaded from Options.ConfigPath and the environment
//	zerolog.Logger         built from the logging section
//	*event.Bus             the event bus, closed on stop
//	*prometheus.Registry   with the bus collector registered
//
// When a config file is given, a watcher reloads it on change, re-applies the
// log level and emits the global ConfigChanged event with the new *config.Config.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dshills/eventmgr/internal/config"
	"github.com/dshills/eventmgr/internal/event"
)

// ConfigChanged is the global event emitted after a config reload.
const ConfigChanged = "config.changed"

// DefaultStopTimeout bounds Stop when the caller's context has no deadline.
const DefaultStopTimeout = 10 * time.Second

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses defaults.
	ConfigPath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput receives log output. Defaults to os.Stderr.
	LogOutput io.Writer

	// WatchConfig reloads the config file when it changes.
	WatchConfig bool
}

// App is a built eventmgr application.
type App struct {
	fx *fx.App

	Config   *config.Config
	Logger   zerolog.Logger
	Bus      *event.Bus
	Registry *prometheus.Registry
}

// New builds the application. extra options are appended to the fx graph,
// for example to invoke a command against the bus.
func New(opts Options, extra ...fx.Option) (*App, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	a := &App{}
	a.fx = fx.New(
		Module(opts),
		fx.Options(extra...),
		fx.NopLogger,
		fx.Populate(&a.Config, &a.Logger, &a.Bus, &a.Registry),
	)
	if err := a.fx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	return a, nil
}

// Start runs the application's start hooks.
func (a *App) Start(ctx context.Context) error {
	if err := a.fx.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	a.Logger.Debug().Msg("application started")
	return nil
}

// Stop runs the stop hooks, closing the bus.
func (a *App) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultStopTimeout)
		defer cancel()
	}
	if err := a.fx.Stop(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrShutdown, err)
	}
	return nil
}

// Run starts the application, calls fn and stops the application.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx)

	if err := a.Stop(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		return err
	}
	return runErr
}
