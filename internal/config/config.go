package config

import (
	"errors"
	"slices"
	"strings"
)

// Generator kinds.
const (
	GeneratorRandom   = "random"
	GeneratorSequence = "sequence"
	GeneratorLua      = "lua"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultInitialState is the owner's state before any mutation.
const DefaultInitialState = "Super-duper-super-puper-super."

var (
	generatorKinds = []string{GeneratorRandom, GeneratorSequence, GeneratorLua}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{FormatText, FormatJSON}
)

// Config holds all memento settings.
type Config struct {
	Owner     OwnerConfig     `toml:"owner" yaml:"owner"`
	Generator GeneratorConfig `toml:"generator" yaml:"generator"`
	History   HistoryConfig   `toml:"history" yaml:"history"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// OwnerConfig configures the state owner.
type OwnerConfig struct {
	// InitialState is the state the owner starts with. Must not be empty.
	InitialState string `toml:"initial_state" yaml:"initial_state"`

	// LabelWidth is how many characters of the state appear in snapshot labels.
	LabelWidth int `toml:"label_width" yaml:"label_width"`
}

// GeneratorConfig selects how Mutate produces new states.
type GeneratorConfig struct {
	// Kind is "random", "sequence" or "lua".
	Kind string `toml:"kind" yaml:"kind"`

	// Length and Alphabet apply to the random generator.
	Length   int    `toml:"length" yaml:"length"`
	Alphabet string `toml:"alphabet" yaml:"alphabet"`

	// Seed makes the random generator deterministic. Nil means unseeded.
	Seed *uint64 `toml:"seed" yaml:"seed"`

	// Values is the list yielded by the sequence generator.
	Values []string `toml:"values" yaml:"values"`

	// Script is the Lua file defining next_state(prev).
	Script string `toml:"script" yaml:"script"`
}

// HistoryConfig configures the snapshot history.
type HistoryConfig struct {
	// MaxEntries bounds the number of stored snapshots.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Owner: OwnerConfig{
			InitialState: DefaultInitialState,
			LabelWidth:   9,
		},
		Generator: GeneratorConfig{
			Kind:   GeneratorRandom,
			Length: 30,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// NormalizeName canonicalizes an enumerated setting such as a log level,
// log format or generator kind: surrounding space is trimmed and the
// value is lowercased.
func NormalizeName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Normalize canonicalizes the enumerated settings with NormalizeName.
// Load and ApplyEnv call it; callers that set fields directly should call
// it before Validate.
func (c *Config) Normalize() {
	c.Generator.Kind = NormalizeName(c.Generator.Kind)
	c.Log.Level = NormalizeName(c.Log.Level)
	c.Log.Format = NormalizeName(c.Log.Format)
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if c.Owner.InitialState == "" {
		add("owner.initial_state", "must not be empty", c.Owner.InitialState, ErrCodeRequiredMissing)
	}
	if c.Owner.LabelWidth < 0 {
		add("owner.label_width", "must not be negative", c.Owner.LabelWidth, ErrCodeOutOfRange)
	}

	switch c.Generator.Kind {
	case GeneratorRandom:
		if c.Generator.Length < 0 {
			add("generator.length", "must not be negative", c.Generator.Length, ErrCodeOutOfRange)
		}
	case GeneratorSequence:
		if len(c.Generator.Values) == 0 {
			add("generator.values", "required for the sequence generator", c.Generator.Values, ErrCodeRequiredMissing)
		}
	case GeneratorLua:
		if c.Generator.Script == "" {
			add("generator.script", "required for the lua generator", c.Generator.Script, ErrCodeRequiredMissing)
		}
	default:
		add("generator.kind", "must be one of random, sequence, lua", c.Generator.Kind, ErrCodeInvalidEnum)
	}

	if c.History.MaxEntries < 0 {
		add("history.max_entries", "must not be negative", c.History.MaxEntries, ErrCodeOutOfRange)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		add("log.level", "must be one of debug, info, warn, error", c.Log.Level, ErrCodeInvalidEnum)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		add("log.format", "must be one of text, json", c.Log.Format, ErrCodeInvalidEnum)
	}

	return errors.Join(errs...)
}

// GeneratorKinds returns the supported generator kinds.
func GeneratorKinds() []string {
	return slices.Clone(generatorKinds)
}
