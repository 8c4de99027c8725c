// SPDX-License-Identifier: MPL-2.0

package tracer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"tracerun-cli/internal/engine"
	"tracerun-cli/internal/envutil"
	"tracerun-cli/internal/payload"
	"tracerun-cli/internal/procutil"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// ErrScriptNotFound is the sentinel error wrapped by ScriptNotFoundError.
	ErrScriptNotFound = errors.New("script not found")
	// ErrOutputMissing is the sentinel error wrapped by MissingOutputError.
	ErrOutputMissing = errors.New("declared output not found in final namespace")
)

type (
	// ScriptNotFoundError is returned by New when the script path does not
	// reference a readable file. It wraps ErrScriptNotFound for errors.Is()
	// compatibility.
	ScriptNotFoundError struct {
		Path  string
		Cause error
	}

	// MissingOutputError is returned after a run when a declared output name
	// is absent from the script's final namespace. It wraps ErrOutputMissing
	// for errors.Is() compatibility.
	MissingOutputError struct {
		Name  string
		RunID string
	}

	// EngineFactory resolves the engine for a script path, replacing the
	// registry-based selection entirely.
	EngineFactory func(scriptPath string) (engine.Engine, error)

	// Runner executes one script file through an execution engine. A Runner
	// is safe to reuse across runs but a single Runner must not execute
	// concurrently with itself.
	Runner struct {
		scriptPath string
		args       []string
		outputs    []string
		globals    map[string]any

		inherit    envutil.InheritMode
		allow      []string
		configVars map[string]string
		envFiles   []string
		envFileDir string
		vars       map[string]string
		overlayEnv bool

		engineName    string
		engineFactory EngineFactory
		registry      *engine.Registry
		workdir    string
		hooks      Hooks
		logger     *log.Logger

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		mu        sync.Mutex
		results   map[string]*payload.Payload
		lastRunID string
		exitCode  engine.ExitCode
	}
)

// Error implements the error interface.
func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script not found: %s", e.Path)
}

// Unwrap returns ErrScriptNotFound so callers can use errors.Is for
// programmatic detection.
func (e *ScriptNotFoundError) Unwrap() error { return ErrScriptNotFound }

// Error implements the error interface.
func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("run %s did not produce declared output %q", e.RunID, e.Name)
}

// Unwrap returns ErrOutputMissing so callers can use errors.Is for
// programmatic detection.
func (e *MissingOutputError) Unwrap() error { return ErrOutputMissing }

// New creates a Runner bound to scriptPath. The script file must exist at
// construction time; a missing or unreadable file fails immediately rather
// than on the first run.
func New(scriptPath string, opts ...Option) (*Runner, error) {
	info, err := os.Stat(scriptPath)
	if err != nil || info.IsDir() {
		return nil, &ScriptNotFoundError{Path: scriptPath, Cause: err}
	}

	registry, err := engine.NewRegistry("")
	if err != nil {
		return nil, err
	}

	r := &Runner{
		scriptPath: scriptPath,
		registry:   registry,
		hooks:      DefaultHooks{},
		logger:     log.Default().With("component", "tracer"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if err := r.inherit.Validate(); err != nil {
		return nil, err
	}
	if r.engineName != "" {
		if _, err := r.registry.Get(r.engineName); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// ScriptPath returns the script file this Runner is bound to.
func (r *Runner) ScriptPath() string { return r.scriptPath }

// OutputNames returns the declared output names in declaration order.
func (r *Runner) OutputNames() []string {
	out := make([]string, len(r.outputs))
	copy(out, r.outputs)
	return out
}

// Run executes the script once and returns its final namespace.
//
// extra holds invocation-scoped globals merged over the configured globals;
// payload envelopes in either map are unwrapped to their underlying values
// before the script sees them. The effective environment is assembled fresh
// for this run and discarded afterwards, so no run can observe variables from
// a previous one.
func (r *Runner) Run(ctx context.Context, extra map[string]any) (engine.Namespace, error) {
	runID := uuid.NewString()

	globals := payload.UnwrapAll(r.globals)
	maps.Copy(globals, payload.UnwrapAll(extra))

	env, err := envutil.Build(envutil.Layers{
		Inherit:    r.inherit,
		Allow:      r.allow,
		ConfigVars: r.configVars,
		Files:      r.envFiles,
		FileBase:   r.envFileDir,
		Vars:       r.vars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build environment: %w", err)
	}

	eng, err := r.selectEngine()
	if err != nil {
		return nil, err
	}
	req := &engine.Request{
		ScriptPath: r.scriptPath,
		Args:       r.args,
		Globals:    globals,
		Env:        env,
		Dir:        r.workdir,
		Stdin:      r.stdin,
		Stdout:     r.stdout,
		Stderr:     r.stderr,
	}

	if err := r.hooks.BeforeRun(ctx, r, req); err != nil {
		return nil, fmt.Errorf("before-run hook failed: %w", err)
	}

	if r.overlayEnv {
		userVars, err := envutil.Build(envutil.Layers{
			Inherit:    envutil.InheritNone,
			ConfigVars: r.configVars,
			Files:      r.envFiles,
			FileBase:   r.envFileDir,
			Vars:       r.vars,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build environment overlay: %w", err)
		}
		restore := envutil.Overlay(userVars)
		// The overlay never survives the run, even when the script fails.
		defer restore()
	}

	r.logger.Debug("executing script",
		"run_id", runID, "script", r.scriptPath, "engine", eng.Name())

	ns, runErr := eng.Trace(ctx, req)

	r.mu.Lock()
	r.lastRunID = runID
	r.exitCode = exitCodeOf(runErr)
	r.mu.Unlock()

	if runErr != nil {
		r.logger.Error("script execution failed",
			"run_id", runID, "script", r.scriptPath, "error", runErr)
		return ns, runErr
	}

	if err := r.hooks.AfterRun(ctx, r, ns); err != nil {
		return ns, err
	}

	r.logger.Info("script execution finished",
		"run_id", runID, "script", r.scriptPath, "outputs", len(r.outputs))
	return ns, nil
}

// selectEngine resolves the engine for this Runner: an injected factory wins,
// then an explicit name, then selection by script extension.
func (r *Runner) selectEngine() (engine.Engine, error) {
	if r.engineFactory != nil {
		return r.engineFactory(r.scriptPath)
	}
	if r.engineName != "" {
		return r.registry.Get(r.engineName)
	}
	return r.registry.ForScript(r.scriptPath), nil
}

// CollectOutputs looks up every declared output name in ns and stores the
// values as payload envelopes. Collection is all-or-nothing: if any name is
// missing, no output is updated and a MissingOutputError for the first
// missing name is returned.
func (r *Runner) CollectOutputs(ns engine.Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	collected := make(map[string]*payload.Payload, len(r.outputs))
	for _, name := range r.outputs {
		value, ok := ns[name]
		if !ok {
			return &MissingOutputError{Name: name, RunID: r.lastRunID}
		}
		collected[name] = payload.NewFrom(value, r.lastRunID)
	}

	if r.results == nil {
		r.results = make(map[string]*payload.Payload, len(collected))
	}
	maps.Copy(r.results, collected)
	return nil
}

// Output returns the payload collected under name. ok is false before the
// first successful run and for names that were never declared.
func (r *Runner) Output(name string) (p *payload.Payload, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok = r.results[name]
	return p, ok
}

// Outputs returns a copy of all collected payloads keyed by output name.
func (r *Runner) Outputs() map[string]*payload.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.results)
}

// LastRunID returns the identifier of the most recent run, or the empty
// string before the first run.
func (r *Runner) LastRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRunID
}

// ExitCode returns the exit status of the most recent run.
func (r *Runner) ExitCode() engine.ExitCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitCode
}

// Close terminates every process this process spawned during script runs.
// Termination is best-effort: processes that already exited or cannot be
// signaled are skipped, never reported as errors.
func (r *Runner) Close() error {
	terminated := procutil.TerminateChildren(int32(os.Getpid()))
	if terminated > 0 {
		r.logger.Debug("terminated descendant processes", "count", terminated)
	}
	return nil
}

// exitCodeOf maps a run error to an exit status: nil is success, script
// exits carry their own status, and any other engine failure reports 1.
func exitCodeOf(runErr error) engine.ExitCode {
	if runErr == nil {
		return 0
	}
	var exitErr *engine.ScriptExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.Code
	}
	return 1
}
