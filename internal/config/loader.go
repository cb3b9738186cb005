package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load returns the defaults overlaid with the file at path, normalized.
// An empty path yields the defaults. A path that names a missing file is
// an error wrapping fs.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Decode parses data into cfg, choosing the format from the extension of
// source. Fields absent from data keep their current values.
func Decode(source string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		return decodeTOML(source, data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(source, data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
}

func decodeTOML(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		var serr *toml.StrictMissingError
		switch {
		case errors.As(err, &derr):
			perr.Line, perr.Column = derr.Position()
		case errors.As(err, &serr) && len(serr.Errors) > 0:
			perr.Line, perr.Column = serr.Errors[0].Position()
		}
		return perr
	}
	return nil
}

func decodeYAML(source string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty document
		}
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}
