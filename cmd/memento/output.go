package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/memento/internal/engine"
)

// Checkpoint list formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// checkpointView is the serialized form of a checkpoint.
type checkpointView struct {
	ID         string    `json:"id" yaml:"id"`
	Label      string    `json:"label" yaml:"label"`
	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q (must be text, json, or yaml)", format)
	}
}

// writeCheckpoints prints cps oldest first in the given format.
func writeCheckpoints(w io.Writer, format string, cps []engine.Checkpoint) error {
	if format == formatText {
		if _, err := fmt.Fprintln(w, "Caretaker: Here's the list of mementos:"); err != nil {
			return err
		}
		for _, cp := range cps {
			if _, err := fmt.Fprintln(w, cp.Label); err != nil {
				return err
			}
		}
		return nil
	}

	views := make([]checkpointView, len(cps))
	for i, cp := range cps {
		views[i] = checkpointView{ID: cp.ID.String(), Label: cp.Label, CapturedAt: cp.CapturedAt}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return validateFormat(format)
	}
}
