// Package script runs Lua scripts against an event bus.
//
// A Host owns one sandboxed gopher-lua state and one bus target. Scripts see
// a global "bus" table:
//
//	bus.on(name, fn)              -- subscribe; returns the subscription id
//	bus.once(name, fn)            -- subscribe for one invocation
//	bus.many(name, fn, n)         -- subscribe for n invocations
//	bus.off(name)                 -- drop every subscription for name
//	bus.emit(name, ...)           -- emit synchronously
//	bus.emit_async(name, ...)     -- emit on the bus worker pool
//	bus.on_global(name, fn)       -- subscribe on the global scope
//	bus.once_global(name, fn)
//	bus.emit_global(name, ...)
//	bus.emit_global_async(name, ...)
//	bus.has(name), bus.count(name)
//	bus.clear(include_global)     -- ClearEvents on the whole bus
//
// gopher-lua states are not goroutine-safe, and the bus may call a
// subscriber from any goroutine. Subscribers registered from Lua therefore
// never run inside the bus: each invocation is queued on the Host and run by
// the goroutine that owns the state, either right after a chunk or emit
// finishes or on an explicit Drain.
//
// Only the base, table, string and math libraries are opened; dofile,
// loadfile, load and loadstring are removed and print goes to the logger.
package script
