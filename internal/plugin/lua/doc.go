// Package lua runs state generators written in Lua.
//
// A generator script defines a global function next_state that receives the
// owner's current state and returns the next one:
//
//	function next_state(prev)
//	    return string.upper(prev) .. "!"
//	end
//
// Load it and hand it to the owner:
//
//	gen, err := lua.LoadGenerator("gen.lua")
//	if err != nil {
//	    return err
//	}
//	defer gen.Close()
//
//	owner, err := state.NewOwner(initial, state.WithGenerator(gen))
//
// # Sandbox
//
// Scripts get the base, table, string and math libraries only. The io, os,
// debug and package libraries are never opened, and dofile, loadfile, load
// and loadstring are removed from the globals.
//
// # Timeouts
//
// Every call runs under the caller's context, bounded by the execution
// timeout (DefaultExecutionTimeout unless WithExecutionTimeout is given).
// gopher-lua checks the context between instructions, so a runaway loop
// is interrupted.
//
// # Reload
//
// Generator.Reload re-reads the script into a fresh state and swaps it in
// only if it loads cleanly, so a broken edit keeps the previous version
// running.
package lua
