package script

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/eventmgr/internal/event"
)

// Host runs Lua scripts against a bus. The Host itself is the bus target
// owning every non-global subscription made from Lua.
type Host struct {
	bus   *event.Bus
	state *State
	log   zerolog.Logger

	qmu    sync.Mutex
	queue  []invocation
	notify chan struct{}

	// Lua-side subscriptions, removed on Close.
	smu  sync.Mutex
	subs map[*event.Subscription]struct{}

	invoked atomic.Uint64
	failed  atomic.Uint64
	closed  atomic.Bool
}

// invocation is a queued call of a Lua subscriber.
type invocation struct {
	name string
	fn   *lua.LFunction
	args []any
}

// HostOption configures a Host.
type HostOption func(*hostConfig)

type hostConfig struct {
	log     zerolog.Logger
	timeout time.Duration
}

// WithLogger sets the host's logger.
func WithLogger(l zerolog.Logger) HostOption {
	return func(c *hostConfig) {
		c.log = l
	}
}

// WithExecutionTimeout bounds each chunk and drain.
func WithExecutionTimeout(d time.Duration) HostOption {
	return func(c *hostConfig) {
		c.timeout = d
	}
}

// NewHost creates a host with a fresh sandboxed state bound to bus.
func NewHost(bus *event.Bus, opts ...HostOption) *Host {
	cfg := hostConfig{log: zerolog.Nop(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log.With().Str("component", "script").Logger()
	h := &Host{
		bus:    bus,
		log:    log,
		notify: make(chan struct{}, 1),
		subs:   make(map[*event.Subscription]struct{}),
	}
	h.state = NewState(WithTimeout(cfg.timeout), WithStateLogger(log))
	h.install(h.state.L)
	return h
}

// Target returns the bus target of the host's subscriptions.
func (h *Host) Target() event.Target {
	return h
}

// State returns the host's Lua state.
func (h *Host) State() *State {
	return h.state
}

// DoString runs a Lua chunk, then runs every queued subscriber.
func (h *Host) DoString(ctx context.Context, code string) error {
	return h.state.Do(ctx, func(L *lua.LState) error {
		if err := L.DoString(code); err != nil {
			return err
		}
		h.drain(L)
		return nil
	})
}

// RunFile reads and runs a Lua file, then runs every queued subscriber.
// The file is read by the host because dofile is not available to scripts.
func (h *Host) RunFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	h.log.Debug().Str("file", path).Msg("running script")
	return h.DoString(ctx, string(code))
}

// Drain runs every queued subscriber on the calling goroutine and returns
// how many ran. Subscribers queued while draining run too.
func (h *Host) Drain(ctx context.Context) (int, error) {
	var n int
	err := h.state.Do(ctx, func(L *lua.LState) error {
		n = h.drain(L)
		return nil
	})
	return n, err
}

// Settle drains until neither the host queue nor the bus has pending work,
// or ctx is done.
func (h *Host) Settle(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := h.Drain(ctx); err != nil {
			return err
		}
		if h.Queued() == 0 && h.bus.Pending() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.notify:
		case <-ticker.C:
		}
	}
}

// Queued returns the number of subscriber invocations waiting to run.
func (h *Host) Queued() int {
	h.qmu.Lock()
	defer h.qmu.Unlock()
	return len(h.queue)
}

// Invoked returns the number of Lua subscriber invocations run so far.
func (h *Host) Invoked() uint64 {
	return h.invoked.Load()
}

// Failed returns the number of Lua subscriber invocations that raised an error.
func (h *Host) Failed() uint64 {
	return h.failed.Load()
}

// Close removes the host's subscriptions, discards queued invocations and
// releases the Lua state.
func (h *Host) Close() {
	if h.closed.Swap(true) {
		return
	}

	h.bus.TargetOff(h)

	h.smu.Lock()
	for sub := range h.subs {
		h.bus.Unsubscribe(sub)
	}
	h.subs = nil
	h.smu.Unlock()

	h.qmu.Lock()
	h.queue = nil
	h.qmu.Unlock()

	h.state.Close()
}

// post queues an invocation; it is called by the bus from any goroutine.
func (h *Host) post(inv invocation) {
	if h.closed.Load() {
		return
	}

	h.qmu.Lock()
	h.queue = append(h.queue, inv)
	h.qmu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// drain runs queued invocations. Caller must hold the state.
func (h *Host) drain(L *lua.LState) int {
	ran := 0
	for {
		h.qmu.Lock()
		batch := h.queue
		h.queue = nil
		h.qmu.Unlock()

		if len(batch) == 0 {
			return ran
		}

		for _, inv := range batch {
			args := make([]lua.LValue, len(inv.args))
			for i, a := range inv.args {
				args[i] = toLua(L, a)
			}

			h.invoked.Add(1)
			ran++
			err := L.CallByParam(lua.P{Fn: inv.fn, NRet: 0, Protect: true}, args...)
			if err != nil {
				h.failed.Add(1)
				h.log.Warn().Err(err).Str("event", inv.name).Msg("lua subscriber failed")
			}
		}
	}
}

// subscriber adapts a Lua function to a bus callback that queues on the host.
func (h *Host) subscriber(name string, fn *lua.LFunction) event.Callback {
	return func(args ...any) {
		h.post(invocation{name: name, fn: fn, args: args})
	}
}

func (h *Host) track(sub *event.Subscription) {
	if sub == nil {
		return
	}
	h.smu.Lock()
	defer h.smu.Unlock()
	if h.subs != nil {
		h.subs[sub] = struct{}{}
	}
}
