// SPDX-License-Identifier: MPL-2.0

package procutil

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"tracerun-cli/internal/runcond"
)

// TestCollectChildPIDs_NoChildren verifies an empty result when the target
// process has no descendants.
func TestCollectChildPIDs_NoChildren(t *testing.T) {
	t.Parallel()

	runcond.RunIf(t, runcond.Condition{RequireExec: []string{"sleep"}})

	// Use a fresh child that spawns nothing of its own.
	cmd := exec.Command("sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start child: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	if pids := CollectChildPIDs(int32(cmd.Process.Pid)); len(pids) != 0 {
		t.Errorf("CollectChildPIDs() = %v, want none", pids)
	}
}

// TestCollectChildPIDs_FindsSpawnedChild verifies that a child spawned by this
// test process is enumerated among our descendants.
func TestCollectChildPIDs_FindsSpawnedChild(t *testing.T) {
	runcond.RunIf(t, runcond.Condition{RequireExec: []string{"sleep"}})

	cmd := exec.Command("sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start child: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	childPID := int32(cmd.Process.Pid)
	found := false
	for _, pid := range CollectChildPIDs(int32(os.Getpid())) {
		if pid == childPID {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("CollectChildPIDs() did not include spawned child %d", childPID)
	}
}

// TestTerminateChildren_SignalsChild verifies that a spawned child receives
// a termination signal exactly once and exits.
func TestTerminateChildren_SignalsChild(t *testing.T) {
	runcond.RunIf(t, runcond.Condition{RequireExec: []string{"sleep"}, SkipWindows: true})

	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start child: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
	}()

	if n := TerminateChildren(int32(os.Getpid())); n < 1 {
		t.Errorf("TerminateChildren() signaled %d processes, want at least 1", n)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
		// Child exited after the termination signal.
	case <-time.After(5 * time.Second):
		t.Error("child did not exit after termination signal")
	}
}
