package event

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTarget struct{ name string }

func noop(args ...any) {}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	owner := &testTarget{"a"}

	sub, err := r.Register(owner, "e", noop, Unlimited)
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, 1, r.Count())
	assert.Equal(t, 1, r.CountTarget(owner))
	assert.Equal(t, 1, r.CountBucket(owner, "e"))
	assert.True(t, r.Has(owner, "e"))
	assert.False(t, r.Has(owner, "other"))
}

func TestRegistry_Register_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		target    Target
		eventName string
		cb        Callback
		count     int
		want      error
	}{
		{"nil target", nil, "e", noop, Unlimited, ErrInvalidTarget},
		{"slice target", []int{1}, "e", noop, Unlimited, ErrInvalidTarget},
		{"map target", map[string]int{}, "e", noop, Unlimited, ErrInvalidTarget},
		{"struct holding slice", struct{ v any }{[]int{1}}, "e", noop, Unlimited, ErrInvalidTarget},
		{"NaN target", math.NaN(), "e", noop, Unlimited, ErrInvalidTarget},
		{"struct holding NaN", struct{ f float64 }{math.NaN()}, "e", noop, Unlimited, ErrInvalidTarget},
		{"array holding NaN", [2]float64{1, math.NaN()}, "e", noop, Unlimited, ErrInvalidTarget},
		{"empty name", Global, "", noop, Unlimited, ErrInvalidName},
		{"nil callback", Global, "e", nil, Unlimited, ErrNilCallback},
		{"zero count", Global, "e", noop, 0, ErrInvalidCount},
		{"negative count", Global, "e", noop, -2, ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			sub, err := r.Register(tt.target, tt.eventName, tt.cb, tt.count)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, sub)
			assert.Zero(t, r.Count())
		})
	}
}

func TestRegistry_ValueTargets(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("player-1", "e", noop, Unlimited)
	require.NoError(t, err)
	_, err = r.Register(42, "e", noop, Unlimited)
	require.NoError(t, err)

	assert.True(t, r.Has("player-1", "e"))
	assert.True(t, r.Has(42, "e"))
	assert.False(t, r.Has("player-2", "e"))
	assert.False(t, r.Has(int64(42), "e"), "different dynamic types are different targets")
}

func TestRegistry_SnapshotOrder(t *testing.T) {
	r := NewRegistry()

	var subs []*Subscription
	for i := 0; i < 5; i++ {
		sub, err := r.Register(Global, "e", noop, Unlimited)
		require.NoError(t, err)
		subs = append(subs, sub)
	}

	snap := r.Snapshot(Global, "e")
	assert.Equal(t, subs, snap)

	// Mutating the registry does not affect the snapshot.
	r.Remove(subs[0])
	assert.Len(t, snap, 5)
	assert.Len(t, r.Snapshot(Global, "e"), 4)
}

func TestRegistry_Snapshot_Miss(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Snapshot(Global, "missing"))
	assert.Nil(t, r.Snapshot(nil, "e"))
	assert.Nil(t, r.Snapshot(Global, ""))
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	owner := &testTarget{"a"}

	a, _ := r.Register(owner, "e", noop, Unlimited)
	b, _ := r.Register(owner, "e", noop, Unlimited)

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a), "second removal is a no-op")
	assert.False(t, a.IsActive())
	assert.Equal(t, []*Subscription{b}, r.Snapshot(owner, "e"))

	assert.True(t, r.Remove(b))
	assert.Zero(t, r.Count())
	assert.Nil(t, r.Targets(), "emptied target bucket is dropped")
	assert.False(t, r.Remove(nil))
}

func TestRegistry_Add_RejectsNilAndDetached(t *testing.T) {
	r := NewRegistry()
	owner := &testTarget{"a"}

	assert.NotPanics(t, func() {
		assert.False(t, r.add(nil))
	})
	assert.Zero(t, r.Count())

	sub, _ := r.Register(owner, "e", noop, Unlimited)
	require.True(t, r.Remove(sub))

	assert.False(t, r.add(sub), "removed subscription stays removed")
	assert.Zero(t, r.Count())
	assert.False(t, r.Has(owner, "e"))
	assert.Empty(t, r.Snapshot(owner, "e"))
}

func TestRegistry_RemoveByName(t *testing.T) {
	r := NewRegistry()
	owner := &testTarget{"a"}

	a, _ := r.Register(owner, "e", noop, Unlimited)
	r.Register(owner, "e", noop, 1)
	r.Register(owner, "other", noop, Unlimited)

	assert.Equal(t, 2, r.RemoveByName(owner, "e"))
	assert.False(t, r.Has(owner, "e"))
	assert.True(t, r.Has(owner, "other"))
	assert.False(t, a.IsActive())
	assert.Equal(t, 1, r.Count())

	assert.Zero(t, r.RemoveByName(owner, "e"))
	assert.Zero(t, r.RemoveByName(nil, "e"))
	assert.Zero(t, r.RemoveByName(owner, ""))
}

func TestRegistry_RemoveByCallback(t *testing.T) {
	r := NewRegistry()

	var calls []string
	first := func(args ...any) { calls = append(calls, "first") }
	second := func(args ...any) { calls = append(calls, "second") }

	a, _ := r.Register(Global, "e", first, Unlimited)
	b, _ := r.Register(Global, "e", second, Unlimited)
	c, _ := r.Register(Global, "e", first, Unlimited)

	require.True(t, r.RemoveByCallback(Global, "e", first))
	assert.Equal(t, []*Subscription{b, c}, r.Snapshot(Global, "e"), "only the first match is removed")
	assert.False(t, a.IsActive())

	assert.False(t, r.RemoveByCallback(Global, "e", func(args ...any) {}))
	assert.False(t, r.RemoveByCallback(Global, "missing", first))
	assert.False(t, r.RemoveByCallback(Global, "e", nil))
}

func TestRegistry_RemoveTarget(t *testing.T) {
	r := NewRegistry()
	a := &testTarget{"a"}
	b := &testTarget{"b"}

	r.Register(a, "x", noop, Unlimited)
	r.Register(a, "y", noop, Unlimited)
	r.Register(b, "x", noop, Unlimited)

	assert.Equal(t, 2, r.RemoveTarget(a))
	assert.Zero(t, r.CountTarget(a))
	assert.Equal(t, 1, r.CountTarget(b))
	assert.Equal(t, 1, r.Count())
	assert.Zero(t, r.RemoveTarget(a))
}

func TestRegistry_Clear(t *testing.T) {
	setup := func() (*Registry, *Subscription, *Subscription) {
		r := NewRegistry()
		g, _ := r.Register(Global, "e", noop, Unlimited)
		o, _ := r.Register(&testTarget{"a"}, "e", noop, Unlimited)
		return r, g, o
	}

	t.Run("preserve global", func(t *testing.T) {
		r, g, o := setup()

		assert.Equal(t, 1, r.Clear(true))
		assert.True(t, r.Has(Global, "e"))
		assert.True(t, g.IsActive())
		assert.False(t, o.IsActive())
		assert.Equal(t, 1, r.Count())
	})

	t.Run("clear everything", func(t *testing.T) {
		r, g, o := setup()

		assert.Equal(t, 2, r.Clear(false))
		assert.False(t, r.Has(Global, "e"))
		assert.False(t, g.IsActive())
		assert.False(t, o.IsActive())
		assert.Zero(t, r.Count())
	})
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	owner := &testTarget{"a"}

	r.Register(owner, "b", noop, Unlimited)
	r.Register(owner, "a", noop, Unlimited)
	r.Register(owner, "c", noop, 1)

	assert.Equal(t, []string{"a", "b", "c"}, r.Names(owner))
	assert.Nil(t, r.Names(&testTarget{"other"}))
}

func TestIsGlobal(t *testing.T) {
	assert.True(t, IsGlobal(Global))
	assert.False(t, IsGlobal("global"))
	assert.False(t, IsGlobal(nil))
}
