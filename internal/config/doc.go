// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the tracerun configuration.
//
// Configuration lives in a config.cue file in the platform config directory
// (or the current directory as a fallback), is validated against an embedded
// CUE schema, and is merged into Viper on top of the built-in defaults.
// Missing files are not an error; defaults apply.
package config
