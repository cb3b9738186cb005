package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// removedGlobals are base-library functions that can load code from disk
// or from strings and so escape the sandbox.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Open base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Never opened: io, os, debug, package, channel, coroutine.
}

// installSandbox removes the globals listed in removedGlobals.
func installSandbox(L *lua.LState) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}
