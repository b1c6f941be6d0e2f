// Package lua runs extension code units written in Lua.
//
// Each dispatch gets its own State: the unit file is executed once (its
// top-level code runs at load time), then the global function named by the
// descriptor's action is called without arguments. States open every
// standard library and run with the host's privileges. The dispatch context
// is attached to the state, so cancelling it stops the running chunk.
//
// Units talk to the host through the preloaded "tool" module:
//
//	local tool = require("tool")
//
//	function start()
//	    tool.require_version("1.0.0")
//	    tool.print(tool.translate("header"))
//	    local name = tool.input("Name")
//	    tool.cache_write("last_name.txt", name)
//	end
//
// # Bridge
//
// Bridge converts between Go and Lua values. Tables with contiguous integer
// keys starting at 1 become slices, other tables become maps.
package lua
