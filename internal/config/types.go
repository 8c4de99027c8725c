// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// EngineShell runs scripts in the embedded shell interpreter.
	EngineShell EngineName = "shell"
	// EngineScript runs scripts in the embedded JavaScript engine.
	EngineScript EngineName = "script"

	// EnvInheritAll passes the whole host environment to scripts.
	EnvInheritAll EnvInheritMode = "all"
	// EnvInheritNone starts scripts from an empty environment.
	EnvInheritNone EnvInheritMode = "none"
	// EnvInheritAllow passes only allowlisted host variables.
	EnvInheritAllow EnvInheritMode = "allow"
)

var (
	// ErrInvalidEngineName is the sentinel error wrapped by InvalidEngineNameError.
	ErrInvalidEngineName = errors.New("invalid engine name")
	// ErrInvalidEnvInheritMode is the sentinel error wrapped by InvalidEnvInheritModeError.
	ErrInvalidEnvInheritMode = errors.New("invalid env inherit mode")
)

type (
	// EngineName selects the execution engine for scripts without a
	// recognized extension. Defined locally to avoid coupling config to the
	// engine package; callers cast at the boundary.
	EngineName string

	// InvalidEngineNameError is returned when an EngineName value is not
	// recognized. It wraps ErrInvalidEngineName for errors.Is() compatibility.
	InvalidEngineNameError struct {
		Value EngineName
	}

	// EnvInheritMode controls host environment inheritance for script runs.
	// Defined locally; the runner casts to envutil.InheritMode at the boundary.
	EnvInheritMode string

	// InvalidEnvInheritModeError is returned when an EnvInheritMode value is
	// not recognized. It wraps ErrInvalidEnvInheritMode for errors.Is()
	// compatibility.
	InvalidEnvInheritModeError struct {
		Value EnvInheritMode
	}

	// EnvConfig groups the environment-related settings.
	EnvConfig struct {
		// Inherit controls host env inheritance (all, none, allow).
		Inherit EnvInheritMode `mapstructure:"inherit"`
		// Allow is the host variable allowlist for the allow mode.
		Allow []string `mapstructure:"allow"`
		// Vars are variables applied to every run (lowest user layer).
		Vars map[string]string `mapstructure:"vars"`
	}

	// UIConfig groups presentation settings.
	UIConfig struct {
		// Verbose enables verbose diagnostics by default.
		Verbose bool `mapstructure:"verbose"`
		// ColorScheme is the glamour style name or path used when rendering
		// guidance text. Empty uses the default style.
		ColorScheme string `mapstructure:"color_scheme"`
	}

	// Config is the root configuration.
	Config struct {
		// DefaultEngine is the fallback engine for unrecognized extensions.
		DefaultEngine EngineName `mapstructure:"default_engine"`
		// Env holds environment settings.
		Env EnvConfig `mapstructure:"env"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidEngineNameError) Error() string {
	return fmt.Sprintf("invalid engine name %q (valid: %s, %s)", e.Value, EngineShell, EngineScript)
}

// Unwrap returns ErrInvalidEngineName so callers can use errors.Is for
// programmatic detection.
func (e *InvalidEngineNameError) Unwrap() error { return ErrInvalidEngineName }

// Error implements the error interface.
func (e *InvalidEnvInheritModeError) Error() string {
	return fmt.Sprintf("invalid env inherit mode %q (valid: %s, %s, %s)",
		e.Value, EnvInheritAll, EnvInheritNone, EnvInheritAllow)
}

// Unwrap returns ErrInvalidEnvInheritMode so callers can use errors.Is for
// programmatic detection.
func (e *InvalidEnvInheritModeError) Unwrap() error { return ErrInvalidEnvInheritMode }

// Validate returns nil if the EngineName is recognized.
func (n EngineName) Validate() error {
	switch n {
	case EngineShell, EngineScript:
		return nil
	default:
		return &InvalidEngineNameError{Value: n}
	}
}

// Validate returns nil if the EnvInheritMode is recognized.
func (m EnvInheritMode) Validate() error {
	switch m {
	case EnvInheritAll, EnvInheritNone, EnvInheritAllow:
		return nil
	default:
		return &InvalidEnvInheritModeError{Value: m}
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.DefaultEngine.Validate(); err != nil {
		return err
	}
	return c.Env.Inherit.Validate()
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultEngine: EngineShell,
		Env: EnvConfig{
			Inherit: EnvInheritAll,
		},
	}
}
