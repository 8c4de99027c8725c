// SPDX-License-Identifier: MPL-2.0

package envutil

import "os"

// Overlay applies vars to the live process environment and returns a restore
// function that puts back the exact prior state: previously-set variables get
// their old values, previously-unset variables are unset again.
//
// Callers must run the restore function on every exit path, typically via
// defer, so that a failing run cannot leak overridden variables into the
// process. Overlapping overlays race on the process environment table and are
// not supported.
func Overlay(vars map[string]string) (restore func()) {
	type prior struct {
		value string
		had   bool
	}

	saved := make(map[string]prior, len(vars))
	for key, value := range vars {
		old, had := os.LookupEnv(key)
		saved[key] = prior{value: old, had: had}
		os.Setenv(key, value)
	}

	return func() {
		for key, p := range saved {
			if p.had {
				os.Setenv(key, p.value)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}
