// SPDX-License-Identifier: MPL-2.0

package config

// Test-only override hooks. Production code never sets these; tests use them
// to redirect config resolution at isolated locations under t.TempDir().
var (
	configDirOverride      string
	configFilePathOverride string
)

// SetConfigDirOverride redirects ConfigDir for the duration of a test.
func SetConfigDirOverride(dir string) { configDirOverride = dir }

// SetConfigFilePathOverride forces Load to read an explicit file.
func SetConfigFilePathOverride(path string) { configFilePathOverride = path }

// ResetOverrides clears all test overrides.
func ResetOverrides() {
	configDirOverride = ""
	configFilePathOverride = ""
}
