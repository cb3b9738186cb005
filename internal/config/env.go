package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnv.
const EnvPrefix = "MEMENTO_"

// envSetter applies one environment value to a config.
type envSetter func(c *Config, value string) error

// envMapping maps environment variables to the settings they override.
var envMapping = map[string]envSetter{
	"MEMENTO_INITIAL_STATE":      func(c *Config, v string) error { c.Owner.InitialState = v; return nil },
	"MEMENTO_LABEL_WIDTH":        intSetter(func(c *Config) *int { return &c.Owner.LabelWidth }),
	"MEMENTO_GENERATOR":          func(c *Config, v string) error { c.Generator.Kind = v; return nil },
	"MEMENTO_GENERATOR_LENGTH":   intSetter(func(c *Config) *int { return &c.Generator.Length }),
	"MEMENTO_GENERATOR_ALPHABET": func(c *Config, v string) error { c.Generator.Alphabet = v; return nil },
	"MEMENTO_GENERATOR_VALUES":   func(c *Config, v string) error { c.Generator.Values = splitList(v); return nil },
	"MEMENTO_GENERATOR_SCRIPT":   func(c *Config, v string) error { c.Generator.Script = v; return nil },
	"MEMENTO_SEED": func(c *Config, v string) error {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Generator.Seed = &seed
		return nil
	},
	"MEMENTO_MAX_ENTRIES": intSetter(func(c *Config) *int { return &c.History.MaxEntries }),
	"MEMENTO_LOG_LEVEL":   func(c *Config, v string) error { c.Log.Level = v; return nil },
	"MEMENTO_LOG_FORMAT":  func(c *Config, v string) error { c.Log.Format = v; return nil },
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ApplyEnv overrides settings from MEMENTO_* environment variables and
// normalizes the result.
// Note: Empty string values are treated as valid values, not as unset.
func (c *Config) ApplyEnv() error {
	for name, set := range envMapping {
		val, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := set(c, val); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	}
	c.Normalize()
	return nil
}

// EnvVars returns the environment variables ApplyEnv reads.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
