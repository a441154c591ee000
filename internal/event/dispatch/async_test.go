package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncDispatcher_StartStop(t *testing.T) {
	d := NewAsyncDispatcher()

	require.NoError(t, d.Start())
	assert.True(t, d.IsRunning())
	assert.ErrorIs(t, d.Start(), ErrAlreadyRunning)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.False(t, d.IsRunning())
	assert.ErrorIs(t, d.Stop(ctx), ErrNotRunning)
}

func TestAsyncDispatcher_Submit_ReturnsBeforeCompletion(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(2), WithQueueSize(16))
	require.NoError(t, d.Start())
	defer d.Stop(context.Background())

	release := make(chan struct{})
	finished := make(chan Result, 1)

	d.Submit(func(args ...any) {
		<-release
	}, nil, func(r Result) {
		finished <- r
	})

	// Submit returned while the callback is still blocked.
	select {
	case <-finished:
		t.Fatal("completion ran before the callback was released")
	default:
	}

	close(release)

	select {
	case r := <-finished:
		assert.True(t, r.IsSuccess())
	case <-time.After(time.Second):
		t.Fatal("completion was not called within timeout")
	}
}

func TestAsyncDispatcher_Submit_NotRunning(t *testing.T) {
	d := NewAsyncDispatcher()

	done := make(chan []any, 1)
	d.Submit(func(args ...any) {
		done <- args
	}, []any{"late"}, nil)

	select {
	case args := <-done:
		assert.Equal(t, []any{"late"}, args)
	case <-time.After(time.Second):
		t.Fatal("task submitted to a stopped dispatcher never ran")
	}

	require.Eventually(t, func() bool {
		return d.Pending() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(1), d.Stats().Overflowed)
}

func TestAsyncDispatcher_Overflow(t *testing.T) {
	d := NewAsyncDispatcher(WithQueueSize(1), WithWorkerCount(1))
	require.NoError(t, d.Start())

	blocker := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	var completed atomic.Int32
	slow := func(args ...any) {
		once.Do(func() { close(started) })
		<-blocker
	}

	d.Submit(slow, nil, func(Result) { completed.Add(1) })
	<-started

	// One fills the queue, the rest overflow onto their own goroutines.
	for i := 0; i < 5; i++ {
		d.Submit(slow, nil, func(Result) { completed.Add(1) })
	}

	assert.GreaterOrEqual(t, d.Stats().Overflowed, uint64(4))

	close(blocker)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, int32(6), completed.Load())
}

func TestAsyncDispatcher_PanicIsolation(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(1))
	require.NoError(t, d.Start())
	defer d.Stop(context.Background())

	results := make(chan Result, 2)
	d.Submit(func(args ...any) { panic("boom") }, nil, func(r Result) { results <- r })
	d.Submit(func(args ...any) {}, nil, func(r Result) { results <- r })

	var panicked, succeeded int
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			if r.IsPanic() {
				panicked++
			} else {
				succeeded++
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for results")
		}
	}

	assert.Equal(t, 1, panicked)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, uint64(1), d.Stats().Panicked)
}

func TestAsyncDispatcher_CompletionPanic(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(1))
	require.NoError(t, d.Start())
	defer d.Stop(context.Background())

	d.Submit(func(args ...any) {}, nil, func(Result) { panic("completion") })

	ran := make(chan struct{})
	d.Submit(func(args ...any) { close(ran) }, nil, nil)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker died after a panicking completion")
	}
	require.Eventually(t, func() bool {
		return d.Stats().CompletionPanics == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAsyncDispatcher_StopWaitsForQueued(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(2), WithQueueSize(100))
	require.NoError(t, d.Start())

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		d.Submit(func(args ...any) {
			time.Sleep(time.Millisecond)
			count.Add(1)
		}, nil, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.Equal(t, int32(50), count.Load())
	assert.Zero(t, d.Pending())
}

func TestAsyncDispatcher_StopTimeout(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(1))
	require.NoError(t, d.Start())

	blocker := make(chan struct{})
	defer close(blocker)
	d.Submit(func(args ...any) { <-blocker }, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)
}

func TestAsyncDispatcher_Stats(t *testing.T) {
	d := NewAsyncDispatcher(WithWorkerCount(2))
	require.NoError(t, d.Start())

	for i := 0; i < 10; i++ {
		d.Submit(func(args ...any) {}, nil, nil)
	}
	d.Submit(func(args ...any) { panic("x") }, nil, nil)

	require.NoError(t, d.Stop(context.Background()))

	stats := d.Stats()
	assert.Equal(t, uint64(11), stats.Submitted)
	assert.Equal(t, uint64(11), stats.Processed)
	assert.Equal(t, uint64(10), stats.Succeeded)
	assert.Equal(t, uint64(1), stats.Panicked)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.QueueDepth)
}
