// Package dispatcher resolves a menu selection to a code unit and runs its
// entry point.
//
// # Selection
//
// ParseSelection turns user input into a Selection. The exit sentinel
// ("exit", any case) moves the dispatcher from Running to Exited; that
// transition is terminal and every later selection returns StatusExited.
// An index outside the table is StatusNoSelection, a no-op.
//
// # Resolution
//
// A descriptor resolves to
//
//	<lib root>/<method>/<path>/<source>
//
// with method defaulting to "mods". The location is built structurally from
// the descriptor, never from user text, and must stay below the lib root.
//
// A compiled-in unit registered under "<method>/<path>/<source>" wins over
// the filesystem. Otherwise the file must exist and a Loader registered for
// its extension loads it:
//
//	d.RegisterLoader(".lua", lua.NewLoader())
//	d.RegisterUnit("main/settings/settings.lua", settings.Unit())
//
// # Failures
//
// Every failure is returned as a Result with an actionable message. Errors
// and panics while loading or running are recovered, logged with the
// descriptor name and run id, and reported as StatusRuntimeError. The
// dispatcher never mutates the menu table.
//
// Dispatched code runs synchronously on the caller's goroutine with full
// host privileges and no timeout. Cancelling ctx is the only way to stop it,
// and only code that observes ctx will.
package dispatcher
