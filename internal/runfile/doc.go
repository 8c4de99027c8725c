// SPDX-License-Identifier: MPL-2.0

// Package runfile loads tracefile.cue files, which declare named script runs
// with their arguments, outputs, engine, and environment so a batch of runs
// can be launched from one definition.
package runfile
