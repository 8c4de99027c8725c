// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"tracerun-cli/internal/envutil"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ShellEngine executes scripts with the embedded mvdan/sh interpreter.
// Globals are merged into the interpreter's variable environment, so the
// script sees them as ordinary shell variables; the final namespace is read
// back from the interpreter's variable table after the run.
type ShellEngine struct{}

// NewShellEngine creates a new shell engine.
func NewShellEngine() *ShellEngine {
	return &ShellEngine{}
}

// Name returns the engine name.
func (e *ShellEngine) Name() string {
	return NameShell
}

// Available returns whether this engine is available.
// The interpreter is embedded, so it always is.
func (e *ShellEngine) Available() bool {
	return true
}

// Validate checks that the script exists and parses as shell syntax.
func (e *ShellEngine) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	src, err := os.ReadFile(req.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(string(src)), filepath.Base(req.ScriptPath)); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Trace executes the script and returns its final variable namespace.
func (e *ShellEngine) Trace(ctx context.Context, req *Request) (Namespace, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(req.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(string(src)), filepath.Base(req.ScriptPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	// Globals become shell variables by merging them into the variable
	// environment after the effective env. Globals win on collision.
	vars := make(map[string]string, len(req.Env)+len(req.Globals))
	maps.Copy(vars, req.Env)
	for name, value := range req.Globals {
		vars[name] = stringify(value)
	}

	stdin, stdout, stderr := req.stdio()

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(envutil.ToSlice(vars)...)),
		interp.StdIO(stdin, stdout, stderr),
	}
	if req.Dir != "" {
		opts = append(opts, interp.Dir(req.Dir))
	}
	// Prepend "--" so args starting with '-' are not taken as shell options.
	if len(req.Args) > 0 {
		params := append([]string{"--"}, req.Args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	runErr := runner.Run(ctx, prog)

	if runErr != nil {
		var exitStatus interp.ExitStatus
		if errors.As(runErr, &exitStatus) {
			return nil, &ScriptExitError{Code: ExitCode(exitStatus)}
		}
		return nil, fmt.Errorf("script execution failed: %w", runErr)
	}

	// Final namespace: injected globals overlaid with every variable the
	// script assigned.
	ns := make(Namespace, len(req.Globals)+len(runner.Vars))
	for name, value := range req.Globals {
		ns[name] = value
	}
	for name, v := range runner.Vars {
		ns[name] = exportVariable(v)
	}

	return ns, nil
}

// exportVariable converts an interpreter variable to a plain Go value.
func exportVariable(v expand.Variable) any {
	switch v.Kind {
	case expand.Indexed:
		return append([]string(nil), v.List...)
	case expand.Associative:
		return maps.Clone(v.Map)
	case expand.String:
		return v.Str
	default:
		return v.String()
	}
}

// stringify renders a global binding as a shell variable value.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
