// SPDX-License-Identifier: MPL-2.0

package runcond

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

const (
	// SlowEnvVar gates tests marked Slow; set it to "1" to run them.
	SlowEnvVar = "TRACERUN_RUN_SLOW"
	// StandaloneEnvVar gates tests marked Standalone; CI runs those in a
	// separate job with this variable set.
	StandaloneEnvVar = "TRACERUN_STANDALONE"
)

// Condition is a declarative set of requirements for running a test.
// The zero value imposes no requirements.
type Condition struct {
	// MinGoVersion requires the running toolchain to be at least this
	// version, e.g. "1.24". Release candidates and devel builds always pass.
	MinGoVersion string
	// SkipWindows skips the test on Windows.
	SkipWindows bool
	// RequireExec requires every named binary to be resolvable on PATH.
	RequireExec []string
	// RequireEnv requires every named environment variable to be set.
	RequireEnv []string
	// Slow marks the test as slow; it only runs when SlowEnvVar is "1".
	Slow bool
	// Standalone marks the test for isolated execution; it only runs when
	// StandaloneEnvVar is set.
	Standalone bool
}

// RunIf evaluates the condition and skips the test with a descriptive reason
// when any requirement is unmet. Requirements are checked in declaration
// order and the first failure wins.
func RunIf(t testing.TB, c Condition) {
	t.Helper()

	if reason := c.unmetReason(); reason != "" {
		t.Skip(reason)
	}
}

// unmetReason returns a human-readable reason for the first unmet
// requirement, or "" when all requirements hold.
func (c Condition) unmetReason() string {
	if c.MinGoVersion != "" && !goVersionAtLeast(runtime.Version(), c.MinGoVersion) {
		return fmt.Sprintf("requires go >= %s, running %s", c.MinGoVersion, runtime.Version())
	}

	if c.SkipWindows && runtime.GOOS == "windows" {
		return "skipped on Windows"
	}

	for _, name := range c.RequireExec {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Sprintf("requires %q on PATH", name)
		}
	}

	for _, name := range c.RequireEnv {
		if _, ok := os.LookupEnv(name); !ok {
			return fmt.Sprintf("requires env var %s", name)
		}
	}

	if c.Slow && os.Getenv(SlowEnvVar) != "1" {
		return fmt.Sprintf("slow test; set %s=1 to run", SlowEnvVar)
	}

	if c.Standalone && os.Getenv(StandaloneEnvVar) == "" {
		return fmt.Sprintf("standalone test; set %s to run", StandaloneEnvVar)
	}

	return ""
}

// goVersionAtLeast reports whether the runtime version string (e.g.
// "go1.25.1") satisfies the minimum version (e.g. "1.24"). Non-release
// toolchains ("devel ...") are treated as new enough.
func goVersionAtLeast(running, minimum string) bool {
	if !strings.HasPrefix(running, "go") {
		return true
	}

	have := parseVersion(strings.TrimPrefix(running, "go"))
	want := parseVersion(minimum)

	for i := 0; i < len(want); i++ {
		h := 0
		if i < len(have) {
			h = have[i]
		}
		if h != want[i] {
			return h > want[i]
		}
	}
	return true
}

// parseVersion splits a dotted version into numeric parts, stopping at the
// first non-numeric segment (so "1.25rc1" parses as [1 25]).
func parseVersion(v string) []int {
	var parts []int
	for _, seg := range strings.Split(v, ".") {
		digits := seg
		for i, r := range seg {
			if r < '0' || r > '9' {
				digits = seg[:i]
				break
			}
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}
