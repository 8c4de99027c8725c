// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	// NameShell is the embedded shell interpreter engine.
	NameShell = "shell"
	// NameScript is the embedded JavaScript engine.
	NameScript = "script"
)

var (
	// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
	ErrInvalidExitCode = errors.New("invalid exit code")
	// ErrScriptExit is the sentinel error wrapped by ScriptExitError.
	ErrScriptExit = errors.New("script exited with non-zero status")
	// ErrNoScript is returned when a Request has an empty script path.
	ErrNoScript = errors.New("no script to execute")
)

type (
	// Namespace is the mapping of variable names to values that a script
	// execution produces. It is created fresh on each Trace call and never
	// persisted.
	Namespace = map[string]any

	// Request carries everything an engine needs for one execution.
	Request struct {
		// ScriptPath is the file to execute as the top-level program.
		ScriptPath string
		// Args are positional arguments visible to the script.
		Args []string
		// Globals is the initial namespace injected before execution.
		Globals map[string]any
		// Env is the complete effective environment for the execution.
		// Engines must use it as-is instead of reading the process env.
		Env map[string]string
		// Dir overrides the working directory when non-empty.
		Dir string
		// Stdin, Stdout, Stderr are the execution's I/O streams.
		// Nil streams default to the process streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Engine executes scripts. Implementations are stateless with respect to
	// individual runs; one Engine value may serve many Trace calls, but not
	// concurrently.
	Engine interface {
		// Name returns the engine identifier (NameShell, NameScript).
		Name() string
		// Available reports whether the engine can run on this host.
		Available() bool
		// Validate checks a request without executing it.
		Validate(req *Request) error
		// Trace executes the script and returns its final namespace.
		// Script failures propagate unchanged; a non-zero exit surfaces as
		// a ScriptExitError.
		Trace(ctx context.Context, req *Request) (Namespace, error)
	}

	// ExitCode represents a process exit status code, range 0-255 on POSIX.
	// The zero value means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the valid
	// range. It wraps ErrInvalidExitCode for errors.Is() compatibility.
	InvalidExitCodeError struct {
		Value ExitCode
	}

	// ScriptExitError reports a script that terminated with a non-zero exit
	// status. It wraps ErrScriptExit for errors.Is() compatibility.
	ScriptExitError struct {
		Code ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for
// programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Error implements the error interface.
func (e *ScriptExitError) Error() string {
	return fmt.Sprintf("script exited with status %d", e.Code)
}

// Unwrap returns ErrScriptExit so callers can use errors.Is for programmatic
// detection.
func (e *ScriptExitError) Unwrap() error { return ErrScriptExit }

// Validate returns nil if the ExitCode is in the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// validateRequest performs the checks shared by all engines.
func validateRequest(req *Request) error {
	if req == nil || req.ScriptPath == "" {
		return ErrNoScript
	}
	if _, err := os.Stat(req.ScriptPath); err != nil {
		return fmt.Errorf("script not accessible: %w", err)
	}
	return nil
}

// stdio returns the request streams with process-stream defaults applied.
func (r *Request) stdio() (io.Reader, io.Writer, io.Writer) {
	stdin, stdout, stderr := r.Stdin, r.Stdout, r.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdin, stdout, stderr
}
