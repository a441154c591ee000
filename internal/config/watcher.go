package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc receives a freshly loaded configuration.
type ReloadFunc func(*Config)

// Watcher reloads a configuration file when it changes on disk.
// Rapid successive writes are coalesced into a single reload.
type Watcher struct {
	path     string
	lookup   LookupFunc
	onReload ReloadFunc

	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay between the last change and the reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithLookup sets the environment lookup used on reload.
func WithLookup(lookup LookupFunc) WatcherOption {
	return func(w *Watcher) {
		w.lookup = lookup
	}
}

// NewWatcher creates a watcher for the config file at path.
// onReload is called with each configuration that loads and validates.
func NewWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		lookup:   os.LookupEnv,
		onReload: onReload,
		watcher:  fsw,
		debounce: 100 * time.Millisecond,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With().Str("component", "config.watcher").Logger()
	return w, nil
}

// Run watches until ctx is canceled or the watcher is closed.
// The file's directory is watched so that editors replacing the file are seen.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)

	if err := w.watcher.Add(dir); err != nil {
		w.log.Error().Err(err).Str("dir", dir).Msg("watch config directory failed")
		return err
	}
	w.log.Debug().Str("file", w.path).Dur("debounce", w.debounce).Msg("watching config")

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.log.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("config changed")
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadWithEnv(w.path, w.lookup)
	if err != nil {
		w.log.Error().Err(err).Str("file", w.path).Msg("config reload failed")
		return
	}
	w.log.Info().Str("file", w.path).Msg("config reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
