package event

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTarget(t *testing.T) {
	type key struct {
		id   int
		name string
	}
	type holder struct{ v any }

	tests := []struct {
		name   string
		target Target
		want   bool
	}{
		{"nil", nil, false},
		{"pointer", &testTarget{"a"}, true},
		{"string", "player", true},
		{"int", 42, true},
		{"struct", key{1, "a"}, true},
		{"global", Global, true},
		{"slice", []int{1}, false},
		{"map", map[string]int{}, false},
		{"func", func() {}, false},
		{"struct holding slice", holder{v: []int{1}}, false},
		{"struct holding string", holder{v: "x"}, true},
		{"float", 1.5, true},
		{"NaN", math.NaN(), false},
		{"float32 NaN", float32(math.NaN()), false},
		{"struct holding NaN", holder{v: math.NaN()}, false},
		{"array holding NaN", [2]float64{0, math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validTarget(tt.target))
		})
	}
}

func TestCallbackID(t *testing.T) {
	a := func(args ...any) {}
	b := func(args ...any) {}

	assert.Equal(t, callbackID(a), callbackID(a))
	assert.NotEqual(t, callbackID(a), callbackID(b))

	// Closures from one literal share their code pointer.
	mk := func(n int) Callback { return func(args ...any) { _ = n } }
	assert.Equal(t, callbackID(mk(1)), callbackID(mk(2)))

	// So do method values of one method bound to different receivers.
	x, y := &recorder{}, &recorder{}
	assert.Equal(t, callbackID(x.handle), callbackID(y.handle))
}

type recorder struct{ n int }

func (c *recorder) handle(args ...any) { c.n++ }

func TestGlobalString(t *testing.T) {
	assert.Equal(t, "global", Global.(interface{ String() string }).String())
}
