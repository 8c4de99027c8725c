// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"tracerun-cli/internal/payload"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// validateFormat rejects unknown --format values before any work happens.
func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q (valid: %s, %s, %s)",
			format, formatText, formatJSON, formatYAML)
	}
}

// runReport is the serialized shape of one run's collected outputs.
type runReport struct {
	RunID   string         `json:"run_id" yaml:"run_id"`
	Outputs map[string]any `json:"outputs" yaml:"outputs"`
}

// printOutputs renders collected outputs in the requested format. names
// fixes the text-mode ordering to declaration order; json and yaml carry the
// outputs as a plain mapping.
func printOutputs(w io.Writer, format, runID string, names []string, outputs map[string]*payload.Payload) error {
	if len(names) == 0 {
		return nil
	}

	switch format {
	case formatJSON, formatYAML:
		report := runReport{RunID: runID, Outputs: make(map[string]any, len(outputs))}
		for name, p := range outputs {
			report.Outputs[name] = p.Value()
		}
		if format == formatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return yaml.NewEncoder(w).Encode(report)
	default:
		for _, name := range names {
			p, ok := outputs[name]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "%s = %v\n", NameStyle.Render(name), p.Value())
		}
		return nil
	}
}
