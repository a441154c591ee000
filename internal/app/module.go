package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dshills/eventmgr/internal/config"
	"github.com/dshills/eventmgr/internal/event"
	"github.com/dshills/eventmgr/internal/logging"
)

// Module returns the fx options providing every application component.
func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideRegistry,
		),
		event.ProvideOption(provideBusOption),
		event.Module(),
		fx.Invoke(registerWatcher),
	)
}

func provideConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// provideLogger builds the logger at trace level and gates it with the
// global level, so a reload can lower or raise verbosity.
func provideLogger(cfg *config.Config, opts Options) zerolog.Logger {
	logging.SetLevel(cfg.Logging.Level)
	return logging.Configure(logging.Config{
		Level:  "trace",
		Format: cfg.Logging.Format,
		Output: opts.LogOutput,
	})
}

func provideBusOption(cfg *config.Config) event.BusOption {
	return event.Options(
		event.WithAsyncWorkerCount(cfg.Event.AsyncWorkers),
		event.WithAsyncQueueSize(cfg.Event.AsyncQueueSize),
	)
}

func provideRegistry(bus *event.Bus) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(event.NewCollector(bus)); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	return reg, nil
}

type watcherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   Options
	Bus       *event.Bus
	Logger    zerolog.Logger
}

// registerWatcher reloads the config file on change while the application
// runs. Nothing is watched without a config file or when watching is off.
func registerWatcher(p watcherParams) error {
	if !p.Options.WatchConfig || p.Options.ConfigPath == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Dir(p.Options.ConfigPath)); errors.Is(err, fs.ErrNotExist) {
		p.Logger.Warn().Str("file", p.Options.ConfigPath).Msg("config directory missing, not watching")
		return nil
	}

	w, err := config.NewWatcher(p.Options.ConfigPath, func(cfg *config.Config) {
		applyReload(p.Bus, cfg)
	}, config.WithWatcherLogger(p.Logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					p.Logger.Error().Err(err).Msg("config watcher stopped")
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			err := w.Close()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return err
		},
	})
	return nil
}

// applyReload re-applies the log level and announces a copy of the new config.
func applyReload(bus *event.Bus, cfg *config.Config) {
	logging.SetLevel(cfg.Logging.Level)
	bus.EmitGlobal(ConfigChanged, cfg.Clone())
}
