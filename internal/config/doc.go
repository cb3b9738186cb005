// Package config loads memento settings.
//
// Settings come from three places, later ones overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension (Load)
//  3. MEMENTO_* environment variables (ApplyEnv)
//
// Command-line flags are applied on top by the CLI.
//
// # File Format
//
//	[owner]
//	initial_state = "Super-duper-super-puper-super."
//	label_width = 9
//
//	[generator]
//	kind = "random"      # random, sequence or lua
//	length = 30
//	seed = 42
//
//	[history]
//	max_entries = 1000
//
//	[log]
//	level = "info"
//	format = "text"
//
// A missing file is not an error; the defaults are used. Unknown keys are
// rejected with a *ParseError.
//
// # Validation
//
// Validate reports every problem as a *ValidationError joined into one
// error. Each matches ErrValidationFailed.
package config
