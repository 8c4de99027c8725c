// SPDX-License-Identifier: MPL-2.0

// Package testutil provides small helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustWriteFile writes content to path, creating parent directories, and
// fails the test on error.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory tree and fails the test on error.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustSetenv sets an environment variable and registers cleanup restoring
// the previous value.
func MustSetenv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}

// MustChdir changes into dir and registers cleanup returning to the
// previous working directory.
func MustChdir(t *testing.T, dir string) {
	t.Helper()
	t.Chdir(dir)
}

// MustClose closes c and fails the test on error.
func MustClose(t testing.TB, c interface{ Close() error }) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}
}
