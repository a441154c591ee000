package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the complete eventmgr configuration.
type Config struct {
	Event   EventConfig   `toml:"event" yaml:"event"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Demo    DemoConfig    `toml:"demo" yaml:"demo"`
}

// EventConfig configures the event bus.
type EventConfig struct {
	// AsyncWorkers is the size of the async worker pool.
	AsyncWorkers int `toml:"async_workers" yaml:"async_workers" validate:"gte=1,lte=1024"`

	// AsyncQueueSize is the capacity of the async task queue.
	AsyncQueueSize int `toml:"async_queue_size" yaml:"async_queue_size" validate:"gte=1,lte=1048576"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `toml:"format" yaml:"format" validate:"oneof=console json"`
}

// DemoConfig configures the interactive demo.
type DemoConfig struct {
	// Target names the object that owns the demo's one-shot subscriptions.
	Target string `toml:"target" yaml:"target" validate:"required"`

	// ClearIncludesGlobal makes the clear key remove global subscriptions too.
	ClearIncludesGlobal bool `toml:"clear_includes_global" yaml:"clear_includes_global"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Event: EventConfig{
			AsyncWorkers:   8,
			AsyncQueueSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Demo: DemoConfig{
			Target: "demo",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
