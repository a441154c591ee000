package event

import "github.com/rs/zerolog"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

// PanicHandler is called when a subscriber callback panics.
type PanicHandler func(err *PanicError)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// asyncQueueSize is the size of the async worker queue.
	asyncQueueSize int

	// asyncWorkerCount is the number of async worker goroutines.
	asyncWorkerCount int

	// panicHandler is called when a callback panics, after logging.
	panicHandler PanicHandler

	logger zerolog.Logger
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		asyncQueueSize:   1024,
		asyncWorkerCount: 8,
		logger:           zerolog.Nop(),
	}
}

// WithAsyncQueueSize sets the async worker queue size.
func WithAsyncQueueSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.asyncQueueSize = size
		}
	}
}

// WithAsyncWorkerCount sets the number of async worker goroutines.
func WithAsyncWorkerCount(count int) BusOption {
	return func(c *busConfig) {
		if count > 0 {
			c.asyncWorkerCount = count
		}
	}
}

// WithPanicHandler sets a function notified of subscriber panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}

// WithLogger sets the logger used for rejected input and subscriber failures.
func WithLogger(l zerolog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}

// Options combines several options into one.
func Options(opts ...BusOption) BusOption {
	return func(c *busConfig) {
		for _, opt := range opts {
			if opt != nil {
				opt(c)
			}
		}
	}
}
