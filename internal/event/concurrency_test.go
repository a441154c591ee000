package event

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestBus_ConcurrentSyncAndAsync(t *testing.T) {
	bus := newTestBus(t, WithAsyncWorkerCount(4), WithAsyncQueueSize(64))
	owner := &testTarget{"stress"}

	const (
		onceSubs   = 200
		emitters   = 8
		emitsEach  = 200
		registrars = 4
	)

	var onceCalls atomic.Int64
	for i := 0; i < onceSubs; i++ {
		bus.Once(owner, "e", func(args ...any) { onceCalls.Add(1) })
	}
	var steadyCalls atomic.Int64
	bus.On(owner, "e", func(args ...any) { steadyCalls.Add(1) })

	var g errgroup.Group
	for i := 0; i < emitters; i++ {
		async := i%2 == 0
		g.Go(func() error {
			for j := 0; j < emitsEach; j++ {
				if async {
					bus.EmitForAsync(owner, "e", j)
				} else {
					bus.Emit(owner, "e", j)
				}
			}
			return nil
		})
	}
	for i := 0; i < registrars; i++ {
		g.Go(func() error {
			name := fmt.Sprintf("churn-%d", i)
			for j := 0; j < emitsEach; j++ {
				sub := bus.On(owner, name, noop)
				bus.Emit(owner, name)
				bus.Unsubscribe(sub)
				bus.Off(owner, name)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	waitIdle(t, bus)

	// Each one-shot fired exactly once and was reaped exactly once.
	assert.Equal(t, int64(onceSubs), onceCalls.Load())
	assert.Equal(t, int64(emitters*emitsEach), steadyCalls.Load())
	assert.Equal(t, 1, bus.Count(owner, "e"))
	assert.Equal(t, uint64(onceSubs), bus.Stats().Reaped)
	assert.Equal(t, 1, bus.Registry().Count())
}

func TestBus_ConcurrentManyNeverOverInvoked(t *testing.T) {
	bus := newTestBus(t)

	const limit = 50
	var calls atomic.Int64
	bus.Many(Global, "e", func(args ...any) { calls.Add(1) }, limit)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		async := i%2 == 1
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				if async {
					bus.EmitGlobalAsync("e")
				} else {
					bus.EmitGlobal("e")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	waitIdle(t, bus)

	assert.Equal(t, int64(limit), calls.Load())
	assert.False(t, bus.Has(Global, "e"))
}

func TestBus_ConcurrentClearAndRegister(t *testing.T) {
	bus := newTestBus(t)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 500; j++ {
				owner := &testTarget{"t"}
				bus.On(owner, "e", noop)
				bus.OnGlobal("g", noop)
				bus.Emit(owner, "e")
				bus.EmitGlobalAsync("g")
			}
			return nil
		})
	}
	g.Go(func() error {
		for j := 0; j < 200; j++ {
			bus.ClearEvents(j%2 == 0)
		}
		return nil
	})
	require.NoError(t, g.Wait())
	waitIdle(t, bus)

	// The subscription count must agree with the bucket contents.
	reg := bus.Registry()
	total := 0
	for _, target := range reg.Targets() {
		total += reg.CountTarget(target)
	}
	assert.Equal(t, reg.Count(), total)
}
