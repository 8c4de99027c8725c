// SPDX-License-Identifier: MPL-2.0

package tracer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracerun-cli/internal/engine"
	"tracerun-cli/internal/payload"
	"tracerun-cli/internal/testutil"
)

// writeScript writes a script into a fresh temp dir and returns its path.
func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.MustWriteFile(t, path, content)
	return path
}

// TestNew_MissingScriptFails verifies construction fails when the script
// file does not exist.
func TestNew_MissingScriptFails(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "nope.sh"))
	if !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("New() = %v, want ErrScriptNotFound", err)
	}
	var typed *ScriptNotFoundError
	if !errors.As(err, &typed) {
		t.Fatal("New() error is not *ScriptNotFoundError")
	}
}

// TestNew_DirectoryFails verifies a directory path is rejected.
func TestNew_DirectoryFails(t *testing.T) {
	t.Parallel()

	if _, err := New(t.TempDir()); !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("New(dir) = %v, want ErrScriptNotFound", err)
	}
}

// TestNew_UnknownEngineFails verifies an unknown engine name is rejected at
// construction time.
func TestNew_UnknownEngineFails(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "run.sh", "true\n")
	if _, err := New(script, WithEngine("python")); !errors.Is(err, engine.ErrUnknownEngine) {
		t.Fatalf("New() = %v, want ErrUnknownEngine", err)
	}
}

// TestRun_HelloWorld verifies a trivial script runs and writes to stdout.
func TestRun_HelloWorld(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "hello.sh", "echo hello world\n")
	var out bytes.Buffer
	r, err := New(script, WithStdio(nil, &out, nil))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello world" {
		t.Errorf("stdout = %q, want %q", got, "hello world")
	}
}

// TestRun_CollectsDeclaredOutputs verifies declared outputs become payloads
// tagged with the run that produced them.
func TestRun_CollectsDeclaredOutputs(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "assign.sh", "x=42\n")
	r, err := New(script, WithOutputs("x"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if p, ok := r.Output("x"); ok || p != nil {
		t.Fatal("Output(x) set before first run")
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	p, ok := r.Output("x")
	if !ok {
		t.Fatal("Output(x) not collected")
	}
	if got := p.Value(); got != "42" {
		t.Errorf("Output(x) = %v (%T), want \"42\"", got, got)
	}
	if p.Source != r.LastRunID() {
		t.Errorf("payload source = %q, want run id %q", p.Source, r.LastRunID())
	}
}

// TestRun_ScriptEngineOutputs verifies JavaScript outputs keep their types.
func TestRun_ScriptEngineOutputs(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "assign.js", "var x = 42;\n")
	r, err := New(script, WithOutputs("x"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	p, ok := r.Output("x")
	if !ok {
		t.Fatal("Output(x) not collected")
	}
	if got := p.Value(); got != int64(42) {
		t.Errorf("Output(x) = %v (%T), want int64(42)", got, got)
	}
}

// TestRun_PayloadGlobalsUnwrapped verifies payload envelopes in globals are
// unwrapped before the script sees them, and invocation globals win over
// configured ones.
func TestRun_PayloadGlobalsUnwrapped(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "sum.js", "var total = base + delta;\n")
	r, err := New(script,
		WithGlobals(map[string]any{"base": int64(1), "delta": int64(1)}),
		WithOutputs("total"),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	extra := map[string]any{"delta": payload.New(int64(9))}
	if _, err := r.Run(context.Background(), extra); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	p, _ := r.Output("total")
	if got := p.Value(); got != int64(10) {
		t.Errorf("Output(total) = %v, want 10", got)
	}
}

// TestRun_MissingOutputFailsWithoutPartialPopulation verifies collection is
// all-or-nothing when a declared name is absent.
func TestRun_MissingOutputFailsWithoutPartialPopulation(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "partial.sh", "present=yes\n")
	r, err := New(script, WithOutputs("present", "absent"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	_, err = r.Run(context.Background(), nil)
	if !errors.Is(err, ErrOutputMissing) {
		t.Fatalf("Run() = %v, want ErrOutputMissing", err)
	}
	var typed *MissingOutputError
	if !errors.As(err, &typed) || typed.Name != "absent" {
		t.Fatalf("Run() error = %v, want MissingOutputError{absent}", err)
	}
	if _, ok := r.Output("present"); ok {
		t.Error("Output(present) populated despite collection failure")
	}
}

// TestRun_EnvReachesScript verifies layered env vars are visible to runs and
// invocation precedence holds.
func TestRun_EnvReachesScript(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "env.sh", "captured=$GREETING\n")
	r, err := New(script,
		WithConfigVars(map[string]string{"GREETING": "from-config"}),
		WithEnv(map[string]string{"GREETING": "from-runner"}),
		WithOutputs("captured"),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	p, _ := r.Output("captured")
	if got := p.Value(); got != "from-runner" {
		t.Errorf("captured = %v, want from-runner", got)
	}
}

// TestRun_ProcessEnvRestoredAfterFailure verifies the process env overlay is
// rolled back even when the script fails.
func TestRun_ProcessEnvRestoredAfterFailure(t *testing.T) {
	const key = "TRACERUN_TEST_OVERLAY"
	t.Setenv(key, "before")

	script := writeScript(t, "fail.sh", "exit 3\n")
	r, err := New(script,
		WithEnv(map[string]string{key: "during"}),
		WithProcessEnvOverlay(true),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	_, err = r.Run(context.Background(), nil)
	if !errors.Is(err, engine.ErrScriptExit) {
		t.Fatalf("Run() = %v, want ErrScriptExit", err)
	}
	if got := os.Getenv(key); got != "before" {
		t.Errorf("process env %s = %q after failed run, want %q", key, got, "before")
	}
	if r.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", r.ExitCode())
	}
}

// TestRun_NoOverlayLeavesProcessEnvUntouched verifies the default mode never
// writes to the process environment.
func TestRun_NoOverlayLeavesProcessEnvUntouched(t *testing.T) {
	const key = "TRACERUN_TEST_NO_OVERLAY"

	script := writeScript(t, "noop.sh", "observed=${"+key+":-unset}\n")
	r, err := New(script,
		WithEnv(map[string]string{key: "scoped"}),
		WithOutputs("observed"),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	p, _ := r.Output("observed")
	if got := p.Value(); got != "scoped" {
		t.Errorf("observed = %v, want scoped", got)
	}
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("process env %s set after run", key)
	}
}

// TestRun_CustomHooks verifies an injected hook strategy replaces the
// default collection.
func TestRun_CustomHooks(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "assign.sh", "x=1\n")
	hooks := &recordingHooks{}
	r, err := New(script, WithOutputs("x"), WithHooks(hooks))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if !hooks.before || !hooks.after {
		t.Errorf("hooks fired = before:%v after:%v, want both", hooks.before, hooks.after)
	}
	if _, ok := r.Output("x"); ok {
		t.Error("default collection ran despite custom hooks")
	}
}

// TestRun_ReusableAcrossRuns verifies a Runner executes repeatedly and later
// runs overwrite collected outputs.
func TestRun_ReusableAcrossRuns(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echoarg.js", "var got = seed;\n")
	r, err := New(script, WithOutputs("got"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	for _, seed := range []int64{1, 2} {
		if _, err := r.Run(context.Background(), map[string]any{"seed": seed}); err != nil {
			t.Fatalf("Run(seed=%d) unexpected error: %v", seed, err)
		}
	}
	p, _ := r.Output("got")
	if got := p.Value(); got != int64(2) {
		t.Errorf("Output(got) = %v, want 2 from the latest run", got)
	}
}

// TestRun_EngineFactory verifies an injected factory replaces registry
// selection.
func TestRun_EngineFactory(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "anything.weird", "ignored")
	fixed := &stubEngine{ns: engine.Namespace{"x": "from-stub"}}
	r, err := New(script,
		WithOutputs("x"),
		WithEngineFactory(func(string) (engine.Engine, error) { return fixed, nil }),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if !fixed.traced {
		t.Error("factory engine was not used")
	}
	p, _ := r.Output("x")
	if got := p.Value(); got != "from-stub" {
		t.Errorf("Output(x) = %v, want from-stub", got)
	}
}

type stubEngine struct {
	ns     engine.Namespace
	traced bool
}

func (s *stubEngine) Name() string                        { return "stub" }
func (s *stubEngine) Available() bool                     { return true }
func (s *stubEngine) Validate(_ *engine.Request) error    { return nil }
func (s *stubEngine) Trace(_ context.Context, _ *engine.Request) (engine.Namespace, error) {
	s.traced = true
	return s.ns, nil
}

type recordingHooks struct {
	before bool
	after  bool
}

func (h *recordingHooks) BeforeRun(_ context.Context, _ *Runner, _ *engine.Request) error {
	h.before = true
	return nil
}

func (h *recordingHooks) AfterRun(_ context.Context, _ *Runner, _ engine.Namespace) error {
	h.after = true
	return nil
}
