// SPDX-License-Identifier: MPL-2.0

package envutil

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"strings"
)

const (
	// InheritAll passes the entire host environment through.
	InheritAll InheritMode = "all"
	// InheritNone starts from an empty environment.
	InheritNone InheritMode = "none"
	// InheritAllow passes only allowlisted host variables through.
	InheritAllow InheritMode = "allow"
)

// ErrInvalidInheritMode is the sentinel error wrapped by InvalidInheritModeError.
var ErrInvalidInheritMode = errors.New("invalid env inherit mode")

type (
	// InheritMode controls how much of the host environment a run starts from.
	InheritMode string

	// InvalidInheritModeError is returned when an InheritMode value is not
	// one of all, none, or allow. It wraps ErrInvalidInheritMode for
	// errors.Is() compatibility.
	InvalidInheritModeError struct {
		Value InheritMode
	}

	// Layers describes the environment sources for one run, in precedence
	// order from lowest (host) to highest (invocation vars).
	Layers struct {
		// Inherit controls host environment filtering. Empty means InheritAll.
		Inherit InheritMode
		// Allow is the host variable allowlist used with InheritAllow.
		Allow []string
		// ConfigVars are variables from the configuration file.
		ConfigVars map[string]string
		// Files are dotenv file paths loaded in order. Relative paths are
		// resolved against FileBase.
		Files []string
		// FileBase is the base directory for relative Files entries.
		// Empty means the current working directory.
		FileBase string
		// Vars are variables configured on the runner.
		Vars map[string]string
		// ExtraVars are invocation-level variables (highest priority).
		ExtraVars map[string]string
	}
)

// Error implements the error interface.
func (e *InvalidInheritModeError) Error() string {
	return fmt.Sprintf("invalid env inherit mode %q (valid: %s, %s, %s)",
		e.Value, InheritAll, InheritNone, InheritAllow)
}

// Unwrap returns ErrInvalidInheritMode so callers can use errors.Is for
// programmatic detection.
func (e *InvalidInheritModeError) Unwrap() error { return ErrInvalidInheritMode }

// Validate returns nil if the InheritMode is one of the defined modes.
// The empty string is valid and treated as InheritAll.
func (m InheritMode) Validate() error {
	switch m {
	case "", InheritAll, InheritNone, InheritAllow:
		return nil
	default:
		return &InvalidInheritModeError{Value: m}
	}
}

// Build assembles the effective environment from the layered sources.
// Later layers override earlier ones on key collision.
func Build(l Layers) (map[string]string, error) {
	if err := l.Inherit.Validate(); err != nil {
		return nil, err
	}

	env := hostEnv(l.Inherit, l.Allow)

	maps.Copy(env, l.ConfigVars)

	for _, path := range l.Files {
		if err := LoadFile(env, path, l.FileBase); err != nil {
			return nil, err
		}
	}

	maps.Copy(env, l.Vars)
	maps.Copy(env, l.ExtraVars)

	return env, nil
}

// hostEnv returns the host environment filtered by the inherit mode.
func hostEnv(mode InheritMode, allow []string) map[string]string {
	env := make(map[string]string)
	if mode == InheritNone {
		return env
	}

	if mode == InheritAllow {
		for _, name := range allow {
			if value, ok := os.LookupEnv(name); ok {
				env[name] = value
			}
		}
		return env
	}

	return FromSlice(os.Environ())
}

// ToSlice converts an environment map to a sorted KEY=VALUE slice.
// Sorting keeps engine invocations deterministic across runs.
func ToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// FromSlice converts a KEY=VALUE slice to an environment map.
// Entries without '=' are skipped.
func FromSlice(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
