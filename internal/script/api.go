package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/eventmgr/internal/event"
)

// install registers the bus table.
func (h *Host) install(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on":                h.luaOn,
		"once":              h.luaOnce,
		"many":              h.luaMany,
		"off":               h.luaOff,
		"emit":              h.luaEmit,
		"emit_async":        h.luaEmitAsync,
		"on_global":         h.luaOnGlobal,
		"once_global":       h.luaOnceGlobal,
		"emit_global":       h.luaEmitGlobal,
		"emit_global_async": h.luaEmitGlobalAsync,
		"has":               h.luaHas,
		"count":             h.luaCount,
		"clear":             h.luaClear,
	})
	L.SetGlobal("bus", mod)
}

// subscribe registers fn and pushes the subscription id, or nil when the
// bus rejected it.
func (h *Host) subscribe(L *lua.LState, target event.Target, count int) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	sub := h.bus.Many(target, name, h.subscriber(name, fn), count)
	if sub == nil {
		L.Push(lua.LNil)
		return 1
	}
	if event.IsGlobal(target) {
		h.track(sub)
	}
	L.Push(lua.LString(sub.ID()))
	return 1
}

func (h *Host) luaOn(L *lua.LState) int {
	return h.subscribe(L, h, event.Unlimited)
}

func (h *Host) luaOnce(L *lua.LState) int {
	return h.subscribe(L, h, 1)
}

func (h *Host) luaMany(L *lua.LState) int {
	n := L.CheckInt(3)
	if n <= 0 {
		L.ArgError(3, "count must be positive")
		return 0
	}
	return h.subscribe(L, h, n)
}

func (h *Host) luaOnGlobal(L *lua.LState) int {
	return h.subscribe(L, event.Global, event.Unlimited)
}

func (h *Host) luaOnceGlobal(L *lua.LState) int {
	return h.subscribe(L, event.Global, 1)
}

func (h *Host) luaOff(L *lua.LState) int {
	h.bus.Off(h, L.CheckString(1))
	return 0
}

// emitArgs converts the arguments after the event name.
func emitArgs(L *lua.LState) []any {
	top := L.GetTop()
	if top < 2 {
		return nil
	}
	args := make([]any, 0, top-1)
	for i := 2; i <= top; i++ {
		args = append(args, toGo(L.Get(i)))
	}
	return args
}

func (h *Host) luaEmit(L *lua.LState) int {
	name := L.CheckString(1)
	h.bus.Emit(h, name, emitArgs(L)...)
	h.drain(L)
	return 0
}

func (h *Host) luaEmitAsync(L *lua.LState) int {
	name := L.CheckString(1)
	h.bus.EmitForAsync(h, name, emitArgs(L)...)
	return 0
}

func (h *Host) luaEmitGlobal(L *lua.LState) int {
	name := L.CheckString(1)
	h.bus.EmitGlobal(name, emitArgs(L)...)
	h.drain(L)
	return 0
}

func (h *Host) luaEmitGlobalAsync(L *lua.LState) int {
	name := L.CheckString(1)
	h.bus.EmitGlobalAsync(name, emitArgs(L)...)
	return 0
}

func (h *Host) luaHas(L *lua.LState) int {
	L.Push(lua.LBool(h.bus.Has(h, L.CheckString(1))))
	return 1
}

func (h *Host) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(h.bus.Count(h, L.CheckString(1))))
	return 1
}

func (h *Host) luaClear(L *lua.LState) int {
	h.bus.ClearEvents(L.OptBool(1, false))
	return 0
}
