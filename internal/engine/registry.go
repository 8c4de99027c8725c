// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownEngine is the sentinel error wrapped by UnknownEngineError.
var ErrUnknownEngine = errors.New("unknown engine")

type (
	// UnknownEngineError is returned when an engine name does not match any
	// registered engine. It wraps ErrUnknownEngine for errors.Is()
	// compatibility.
	UnknownEngineError struct {
		Name string
	}

	// Registry holds the available engines and selects one per script.
	Registry struct {
		engines map[string]Engine
		// defaultName is used when extension-based selection has no match.
		defaultName string
	}
)

// Error implements the error interface.
func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine %q (valid: %s, %s)", e.Name, NameShell, NameScript)
}

// Unwrap returns ErrUnknownEngine so callers can use errors.Is for
// programmatic detection.
func (e *UnknownEngineError) Unwrap() error { return ErrUnknownEngine }

// NewRegistry builds a registry with both embedded engines registered.
// defaultName selects the fallback engine for unrecognized script extensions;
// empty means NameShell.
func NewRegistry(defaultName string) (*Registry, error) {
	if defaultName == "" {
		defaultName = NameShell
	}

	r := &Registry{
		engines: map[string]Engine{
			NameShell:  NewShellEngine(),
			NameScript: NewScriptEngine(),
		},
		defaultName: defaultName,
	}

	if _, ok := r.engines[defaultName]; !ok {
		return nil, &UnknownEngineError{Name: defaultName}
	}
	return r, nil
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, error) {
	eng, ok := r.engines[name]
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return eng, nil
}

// Names returns the registered engine names in stable order.
func (r *Registry) Names() []string {
	return []string{NameShell, NameScript}
}

// ForScript selects an engine for the given script path by file extension:
// .js and .mjs files go to the JavaScript engine, .sh and .bash files to the
// shell engine, anything else to the configured default.
func (r *Registry) ForScript(scriptPath string) Engine {
	switch strings.ToLower(filepath.Ext(scriptPath)) {
	case ".js", ".mjs":
		return r.engines[NameScript]
	case ".sh", ".bash":
		return r.engines[NameShell]
	default:
		return r.engines[r.defaultName]
	}
}
