// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// TestScriptEngine_NamespaceCapture verifies globals created by the script
// appear in the final namespace with exported Go values.
func TestScriptEngine_NamespaceCapture(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "vars.js", "var x = 42;\nvar name = 'tracer';\n")

	ns, err := NewScriptEngine().Trace(context.Background(), &Request{ScriptPath: path})
	if err != nil {
		t.Fatalf("Trace() unexpected error: %v", err)
	}
	if got := ns["x"]; got != int64(42) {
		t.Errorf("ns[x] = %v (%T), want int64 42", got, got)
	}
	if got := ns["name"]; got != "tracer" {
		t.Errorf("ns[name] = %v, want %q", got, "tracer")
	}
}

// TestScriptEngine_BuiltinsExcluded verifies VM builtins do not leak into
// the result namespace.
func TestScriptEngine_BuiltinsExcluded(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "empty.js", "var only = 1;\n")

	ns, err := NewScriptEngine().Trace(context.Background(), &Request{ScriptPath: path})
	if err != nil {
		t.Fatalf("Trace() unexpected error: %v", err)
	}
	for _, builtin := range []string{"Math", "JSON", "Object", "argv", "env", "console"} {
		if _, ok := ns[builtin]; ok {
			t.Errorf("namespace leaked builtin %q", builtin)
		}
	}
	if len(ns) != 1 {
		t.Errorf("namespace = %v, want only the script's binding", ns)
	}
}

// TestScriptEngine_GlobalsInjected verifies injected globals are visible and
// script-side mutations win in the result.
func TestScriptEngine_GlobalsInjected(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "globals.js", "var doubled = seed * 2;\nseed = seed + 1;\n")

	ns, err := NewScriptEngine().Trace(context.Background(), &Request{
		ScriptPath: path,
		Globals:    map[string]any{"seed": int64(10)},
	})
	if err != nil {
		t.Fatalf("Trace() unexpected error: %v", err)
	}
	if got := ns["doubled"]; got != int64(20) {
		t.Errorf("ns[doubled] = %v (%T), want int64 20", got, got)
	}
	if got := ns["seed"]; got != int64(11) {
		t.Errorf("ns[seed] = %v (%T), want mutated value 11", got, got)
	}
}

// TestScriptEngine_ArgvAndEnv verifies argv and env are exposed to scripts.
func TestScriptEngine_ArgvAndEnv(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "argv.js", "var firstArg = argv[1];\nvar fromEnv = env.TRACERUN_JS_TEST;\n")

	ns, err := NewScriptEngine().Trace(context.Background(), &Request{
		ScriptPath: path,
		Args:       []string{"hello"},
		Env:        map[string]string{"TRACERUN_JS_TEST": "wired"},
	})
	if err != nil {
		t.Fatalf("Trace() unexpected error: %v", err)
	}
	if got := ns["firstArg"]; got != "hello" {
		t.Errorf("ns[firstArg] = %v, want %q", got, "hello")
	}
	if got := ns["fromEnv"]; got != "wired" {
		t.Errorf("ns[fromEnv] = %v, want %q", got, "wired")
	}
}

// TestScriptEngine_ConsoleLog verifies console output reaches the request
// streams.
func TestScriptEngine_ConsoleLog(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "log.js", "console.log('Hello World');\nconsole.error('oops');\n")

	var stdout, stderr bytes.Buffer
	_, err := NewScriptEngine().Trace(context.Background(), &Request{
		ScriptPath: path,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("Trace() unexpected error: %v", err)
	}
	if got := stdout.String(); got != "Hello World\n" {
		t.Errorf("stdout = %q, want %q", got, "Hello World\n")
	}
	if got := stderr.String(); got != "oops\n" {
		t.Errorf("stderr = %q, want %q", got, "oops\n")
	}
}

// TestScriptEngine_ThrownErrorPropagates verifies script exceptions surface
// as errors.
func TestScriptEngine_ThrownErrorPropagates(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "throw.js", "throw new Error('deliberate');\n")

	_, err := NewScriptEngine().Trace(context.Background(), &Request{ScriptPath: path})
	if err == nil {
		t.Fatal("Trace() = nil error, want script failure")
	}
	if !strings.Contains(err.Error(), "deliberate") {
		t.Errorf("Trace() error = %v, want script message included", err)
	}
}

// TestScriptEngine_ContextCancellation verifies a canceled context interrupts
// a busy script.
func TestScriptEngine_ContextCancellation(t *testing.T) {
	t.Parallel()

	path := writeScript(t, "spin.js", "while (true) {}\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := NewScriptEngine().Trace(ctx, &Request{ScriptPath: path})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Trace() = nil error, want interruption")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("busy script was not interrupted")
	}
}

// TestScriptEngine_Validate covers compile and existence checks.
func TestScriptEngine_Validate(t *testing.T) {
	t.Parallel()

	eng := NewScriptEngine()

	good := writeScript(t, "ok.js", "var ok = true;\n")
	if err := eng.Validate(&Request{ScriptPath: good}); err != nil {
		t.Errorf("Validate(good) = %v, want nil", err)
	}

	bad := writeScript(t, "bad.js", "var = ;;;\n")
	if err := eng.Validate(&Request{ScriptPath: bad}); err == nil {
		t.Error("Validate(bad syntax) = nil, want error")
	}
}
