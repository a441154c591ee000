// Package demo drives an event bus from the keyboard.
//
//	o        register the global "e" handler four times
//	k        register a one-shot "e" handler on the demo target
//	e        emit global "e" asynchronously with a random value
//	t        emit "e" synchronously on the demo target
//	x        remove every subscription of the demo target
//	c        clear all events (global handlers kept unless configured)
//	q, Esc   quit
package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/eventmgr/internal/event"
)

// EventName is the event every demo key works with.
const EventName = "e"

const maxLines = 500

var errQuit = errors.New("quit")

// Actor is the demo's bus target.
type Actor struct {
	Name string
}

// Demo binds keys to bus calls and keeps a log of handler output.
type Demo struct {
	bus    *event.Bus
	target *Actor
	log    zerolog.Logger

	clearIncludesGlobal bool
	random              func() int

	mu     sync.Mutex
	lines  []string
	screen tcell.Screen
}

// Option configures a Demo.
type Option func(*Demo)

// WithLogger sets the demo's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Demo) {
		d.log = l
	}
}

// WithClearIncludesGlobal makes the clear key remove global handlers too.
func WithClearIncludesGlobal(include bool) Option {
	return func(d *Demo) {
		d.clearIncludesGlobal = include
	}
}

// WithRandom replaces the source of emitted values.
func WithRandom(fn func() int) Option {
	return func(d *Demo) {
		if fn != nil {
			d.random = fn
		}
	}
}

// New creates a demo on bus whose target is named name.
func New(bus *event.Bus, name string, opts ...Option) *Demo {
	d := &Demo{
		bus:    bus,
		target: &Actor{Name: name},
		log:    zerolog.Nop(),
		random: func() int { return rand.Intn(200) - 100 },
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("component", "demo").Str("target", name).Logger()
	return d
}

// Target returns the demo target.
func (d *Demo) Target() *Actor {
	return d.target
}

// HandleKey applies a key press. It returns false when the demo should quit.
func (d *Demo) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false

	case 'o':
		for i := 0; i < 4; i++ {
			d.bus.OnGlobal(EventName, d.onGlobal)
		}
		d.printf("registered global %q x4", EventName)

	case 'k':
		d.bus.Once(d.target, EventName, d.onTarget)
		d.printf("registered one-shot %q on %s", EventName, d.target.Name)

	case 'e':
		v := d.random()
		d.bus.EmitGlobalAsync(EventName, v)
		d.printf("emit async global %q (%d)", EventName, v)

	case 't':
		v := d.random()
		d.printf("emit %q on %s (%d)", EventName, d.target.Name, v)
		d.bus.Emit(d.target, EventName, v)

	case 'x':
		d.bus.TargetOff(d.target)
		d.printf("target off %s", d.target.Name)

	case 'c':
		d.bus.ClearEvents(d.clearIncludesGlobal)
		d.printf("cleared events (include global: %t)", d.clearIncludesGlobal)
	}
	return true
}

func (d *Demo) onGlobal(args ...any) {
	d.log.Info().Str("event", EventName).Interface("args", args).Msg("global handler")
	d.printf("global %q: %s", EventName, joinArgs(args))
}

func (d *Demo) onTarget(args ...any) {
	d.log.Info().Str("event", EventName).Interface("args", args).Msg("one-shot handler")
	d.printf("%s %q once: %s", d.target.Name, EventName, joinArgs(args))
}

func joinArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}

// printf appends a line and wakes the screen. Handlers call it from bus
// worker goroutines.
func (d *Demo) printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)

	d.mu.Lock()
	d.lines = append(d.lines, line)
	if len(d.lines) > maxLines {
		d.lines = d.lines[len(d.lines)-maxLines:]
	}
	screen := d.screen
	d.mu.Unlock()

	if screen != nil {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Lines returns a copy of the output log.
func (d *Demo) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Run draws the demo on an initialized screen and handles keys until the
// user quits or ctx is done. The caller owns the screen.
func (d *Demo) Run(ctx context.Context, screen tcell.Screen) error {
	d.mu.Lock()
	d.screen = screen
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.screen = nil
		d.mu.Unlock()
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = screen.PostEvent(tcell.NewEventInterrupt(errQuit))
	})
	defer stop()

	for {
		d.draw(screen)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if !d.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if ev.Data() == errQuit {
				return ctx.Err()
			}
		}
	}
}

var help = []string{
	"o: on global e x4   k: once e on target   e: emit global e async",
	"t: emit e on target   x: target off   c: clear events   q: quit",
}

func (d *Demo) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()

	bold := tcell.StyleDefault.Bold(true)
	y := 0
	for _, line := range help {
		drawText(screen, 0, y, w, bold, line)
		y++
	}

	stats := d.bus.Stats()
	status := fmt.Sprintf("subscriptions: %d  targets: %d  emits: %d  async: %d  pending: %d",
		stats.Subscriptions, stats.Targets, stats.Emits, stats.AsyncEmits, d.bus.Pending())
	drawText(screen, 0, y, w, tcell.StyleDefault.Reverse(true), status)
	y++

	lines := d.Lines()
	if room := h - y; room < len(lines) {
		if room < 0 {
			room = 0
		}
		lines = lines[len(lines)-room:]
	}
	for _, line := range lines {
		drawText(screen, 0, y, w, tcell.StyleDefault, line)
		y++
	}

	screen.Show()
}

func drawText(screen tcell.Screen, x, y, width int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
