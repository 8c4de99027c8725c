// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/dop251/goja"
)

// ScriptEngine executes JavaScript files with the embedded goja engine.
// Globals are set on the VM before the run; the final namespace is the set
// of global bindings the script created or modified, plus the injected
// globals read back from the VM.
//
// The script additionally sees:
//   - argv: the script path followed by the positional arguments
//   - env: the effective environment as a string map
//   - console.log / console.error: writing to the request's stdout/stderr
type ScriptEngine struct{}

// NewScriptEngine creates a new JavaScript engine.
func NewScriptEngine() *ScriptEngine {
	return &ScriptEngine{}
}

// Name returns the engine name.
func (e *ScriptEngine) Name() string {
	return NameScript
}

// Available returns whether this engine is available.
// The VM is embedded, so it always is.
func (e *ScriptEngine) Available() bool {
	return true
}

// Validate checks that the script exists and compiles.
func (e *ScriptEngine) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	src, err := os.ReadFile(req.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if _, err := goja.Compile(req.ScriptPath, string(src), false); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Trace executes the script and returns its final global namespace.
func (e *ScriptEngine) Trace(ctx context.Context, req *Request) (Namespace, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(req.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	prog, err := goja.Compile(req.ScriptPath, string(src), false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	vm := goja.New()

	// Snapshot the VM's built-in globals so they can be excluded from the
	// result namespace.
	builtin := make(map[string]bool)
	for _, key := range vm.GlobalObject().Keys() {
		builtin[key] = true
	}

	for name, value := range req.Globals {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to inject global %q: %w", name, err)
		}
	}

	argv := append([]string{req.ScriptPath}, req.Args...)
	if err := vm.Set("argv", argv); err != nil {
		return nil, fmt.Errorf("failed to set argv: %w", err)
	}
	if err := vm.Set("env", req.Env); err != nil {
		return nil, fmt.Errorf("failed to set env: %w", err)
	}
	if err := e.installConsole(vm, req); err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	// goja has no context support; interrupt the VM when ctx is done.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer vm.ClearInterrupt()

	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	// Final namespace: injected globals plus every non-builtin global the
	// script left behind. Script-side values win on collision so mutations
	// of injected globals are observed.
	ns := make(Namespace, len(req.Globals))
	for name, value := range req.Globals {
		ns[name] = value
	}
	global := vm.GlobalObject()
	for _, key := range global.Keys() {
		if builtin[key] || key == "argv" || key == "env" || key == "console" {
			continue
		}
		ns[key] = global.Get(key).Export()
	}

	return ns, nil
}

// installConsole wires console.log and console.error to the request streams.
func (e *ScriptEngine) installConsole(vm *goja.Runtime, req *Request) error {
	_, stdout, stderr := req.stdio()

	printTo := func(w interface{ Write([]byte) (int, error) }) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]any, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.Export())
			}
			fmt.Fprintln(w, parts...)
			return goja.Undefined()
		}
	}

	console := vm.NewObject()
	if err := console.Set("log", printTo(stdout)); err != nil {
		return fmt.Errorf("failed to install console.log: %w", err)
	}
	if err := console.Set("error", printTo(stderr)); err != nil {
		return fmt.Errorf("failed to install console.error: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return fmt.Errorf("failed to install console: %w", err)
	}
	return nil
}
