package event

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	defaultBus  *Bus
	defaultOnce sync.Once
)

// Default returns the process-wide bus, creating it on first use.
// Concurrent first calls observe the same instance.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = NewBus(WithLogger(log.Logger))
	})
	return defaultBus
}
