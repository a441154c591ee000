// Package logging configures structured logging for eventmgr.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level to output.
	Level string
	// Format is FormatConsole or FormatJSON.
	Format string
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Component is attached to every entry when non-empty.
	Component string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    FormatConsole,
		Output:    os.Stderr,
		Component: "eventmgr",
	}
}

// ParseLevel parses a level name. Unknown or empty names yield info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(w),
		}
	}

	ctx := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	return ctx.Logger()
}

var configureMu sync.Mutex

// Configure creates a logger from cfg and installs it as the global logger
// used by the zerolog/log package.
func Configure(cfg Config) zerolog.Logger {
	configureMu.Lock()
	defer configureMu.Unlock()

	logger := New(cfg)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}

// SetLevel changes the process-wide minimum level. Loggers created with a
// lower level still drop entries below it.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// WithComponent returns a child logger with the component field set.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
